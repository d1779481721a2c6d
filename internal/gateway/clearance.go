package gateway

import (
	"context"
	"strings"

	"github.com/machinebox/graphql"
	"go.uber.org/zap"

	"github.com/Darlington720/library-module/internal/models"
	appErrors "github.com/Darlington720/library-module/pkg/errors"
)

const clearanceStudentsQuery = `query library_clearance_students {
  library_clearance_students {
    id
    student_no
    status
    acc_yr_title
    section_id
    created_on
    student_details {
      biodata {
        surname
        other_names
        email
        phone_no
      }
      registration_no
      student_no
      course_details {
        course {
          course_code
          course_title
        }
      }
    }
    rejection_logs {
      clearance_id
      reject_reason
      rejected_at
      rejected_by
      rejected_by_user
    }
  }
}`

const studentBorrowRecordsQuery = `query student_borrow_records($student_no: String!) {
  student_borrow_records(student_no: $student_no) {
    id
    book_id
    student_no
    borrow_date
    due_date
    return_date
    status
    fine
    condition
    notes
    book {
      id
      title
      author
      isbn
      category
      status
      location
    }
  }
}`

const clearStudentMutation = `mutation clearStudentForGraduation($payload: ClearanceInput!) {
  clearStudentForGraduation(payload: $payload) {
    success
    message
  }
}`

const overrideClearanceMutation = `mutation overrideStudentClearance($payload: ClearanceOverrideInput!) {
  overrideStudentClearance(payload: $payload) {
    success
    message
  }
}`

// ListClearanceCandidates fetches every clearance request with its student and
// rejection history. Rows the backend returns in an unusable shape are skipped.
func (c *Client) ListClearanceCandidates(ctx context.Context, token string) ([]models.Candidate, error) {
	var resp clearanceEnvelope
	if err := c.run(ctx, "library_clearance_students", token, graphql.NewRequest(clearanceStudentsQuery), &resp); err != nil {
		return nil, err
	}

	candidates := make([]models.Candidate, 0, len(resp.Students))
	for _, row := range resp.Students {
		if err := c.validate.Struct(row); err != nil {
			c.logger.Warn("skipping invalid clearance row", zap.String("id", row.ID.String()), zap.Error(err))
			continue
		}
		candidate, ok := row.toCandidate()
		if !ok {
			c.logger.Warn("skipping clearance row with unknown status", zap.String("id", row.ID.String()), zap.String("status", row.Status))
			continue
		}
		candidates = append(candidates, candidate)
	}
	return candidates, nil
}

// StudentBorrowRecords lists every loan for a student, joined with its book.
func (c *Client) StudentBorrowRecords(ctx context.Context, token, studentNumber string) ([]models.BorrowRecord, error) {
	req := graphql.NewRequest(studentBorrowRecordsQuery)
	req.Var("student_no", studentNumber)

	var resp studentBorrowEnvelope
	if err := c.run(ctx, "student_borrow_records", token, req, &resp); err != nil {
		return nil, err
	}
	if err := c.check("student_borrow_records", resp); err != nil {
		return nil, err
	}

	records := make([]models.BorrowRecord, 0, len(resp.Records))
	for _, w := range resp.Records {
		records = append(records, w.toModel())
	}
	return records, nil
}

// SubmitClearanceDecision sends an approve or reject decision. Approvals are
// sent with the backend's "cleared" status.
func (c *Client) SubmitClearanceDecision(ctx context.Context, token string, decision models.Decision) error {
	payload := decisionPayload{
		ClearanceID: decision.ClearanceKey,
		StudentNo:   decision.StudentNumber,
		Status:      remoteStatus(decision.Status),
		Reason:      decision.Reason,
	}
	return c.mutate(ctx, "clearStudentForGraduation", clearStudentMutation, token, payload)
}

// SubmitClearanceOverride records a manual override with the backend.
func (c *Client) SubmitClearanceOverride(ctx context.Context, token string, decision models.Decision) error {
	payload := decisionPayload{
		ClearanceID: decision.ClearanceKey,
		StudentNo:   decision.StudentNumber,
		Reason:      decision.Reason,
	}
	return c.mutate(ctx, "overrideStudentClearance", overrideClearanceMutation, token, payload)
}

func (c *Client) mutate(ctx context.Context, operation, query, token string, payload decisionPayload) error {
	req := graphql.NewRequest(query)
	req.Var("payload", payload)

	resp := map[string]*mutationResult{}
	if err := c.run(ctx, operation, token, req, &resp); err != nil {
		return err
	}
	result := resp[operation]
	if result == nil || !result.Success {
		message := appErrors.ErrUpstream.Message
		if result != nil && strings.TrimSpace(result.Message) != "" {
			message = result.Message
		}
		return appErrors.Clone(appErrors.ErrUpstream, message)
	}
	return nil
}
