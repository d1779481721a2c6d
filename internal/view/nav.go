package view

import (
	"strings"

	"github.com/Darlington720/library-module/internal/models"
)

// NavItem is an entry of the left navigation rail.
type NavItem struct {
	Title  string
	Route  string
	Icon   string
	Active bool
}

var railItems = []NavItem{
	{Title: "Dashboard", Route: "/", Icon: "home"},
	{Title: "Books", Route: "/books", Icon: "book"},
	{Title: "Borrowings", Route: "/borrowings", Icon: "repeat"},
	{Title: "Past Papers", Route: "/past-papers", Icon: "file-text"},
	{Title: "Clearance", Route: "/clearance", Icon: "check-circle"},
	{Title: "Fines", Route: "/fines", Icon: "dollar-sign"},
	{Title: "Reports", Route: "/reports", Icon: "bar-chart"},
}

// NavRail returns the rail entries enabled for profile. The dashboard is
// always shown; a role without modules sees every entry.
func NavRail(profile models.Profile, current string) []NavItem {
	items := make([]NavItem, 0, len(railItems))
	for _, item := range railItems {
		if item.Route != "/" && len(profile.Role.Modules) > 0 && !profile.HasModule(item.Route) {
			continue
		}
		item.Active = isActive(item.Route, current)
		items = append(items, item)
	}
	return items
}

func isActive(route, current string) bool {
	if route == "/" {
		return current == "/" || current == ""
	}
	return current == route || strings.HasPrefix(current, route+"/")
}
