package models

import (
	"strings"
	"time"
)

// AcademicStatus reflects the registry standing of a student.
type AcademicStatus string

const (
	AcademicStatusActive    AcademicStatus = "active"
	AcademicStatusGraduated AcademicStatus = "graduated"
	AcademicStatusSuspended AcademicStatus = "suspended"
	AcademicStatusWithdrawn AcademicStatus = "withdrawn"
)

// Course identifies the programme a student is enrolled on.
type Course struct {
	Code  string `json:"code"`
	Title string `json:"title"`
}

// Student is the read-only projection of a learner returned by the library backend.
type Student struct {
	ID                 string         `json:"id"`
	RegistrationNumber string         `json:"registrationNumber"`
	StudentNumber      string         `json:"studentNumber"`
	Surname            string         `json:"surname"`
	OtherNames         string         `json:"otherNames"`
	Email              string         `json:"email"`
	Faculty            string         `json:"faculty,omitempty"`
	Course             Course         `json:"course"`
	GraduationYear     int            `json:"graduationYear,omitempty"`
	AcademicStatus     AcademicStatus `json:"academicStatus"`
	PhoneNumber        string         `json:"phoneNumber,omitempty"`
	Address            string         `json:"address,omitempty"`
	ProfileImage       string         `json:"profileImage,omitempty"`
	EnrollmentDate     *time.Time     `json:"enrollmentDate,omitempty"`
}

// Name renders the display name as surname followed by other names.
func (s Student) Name() string {
	return strings.TrimSpace(strings.TrimSpace(s.Surname) + " " + strings.TrimSpace(s.OtherNames))
}
