// Package routing decides which department handles a ticket and where a staff
// member lands after login.
package routing

// Ticket categories, as offered on the ticket form.
const (
	CertificatesDocuments = "Certificates_Documents"
	CoursesTraining       = "Courses_Training"
	FacilitiesLogistics   = "Facilities_Logistics"
	FinanceAdmin          = "Finance_Admin"
	ITSupport             = "IT_Support"
)

// Roles.
const (
	RoleStudent     = "student"
	RoleAdmin       = "admin"
	RoleWarden      = "warden"
	RoleRector      = "rector"
	RoleMaintenance = "maintenance"
	RoleIT          = "it"
	RolePanel       = "panel"
)

// TicketCategories lists the valid ticket categories in form order.
var TicketCategories = []string{ITSupport, FacilitiesLogistics, FinanceAdmin, CertificatesDocuments, CoursesTraining}

var departments = map[string]string{
	ITSupport:             RoleIT,
	FacilitiesLogistics:   RoleMaintenance,
	FinanceAdmin:          RolePanel,
	CertificatesDocuments: RoleWarden,
	CoursesTraining:       RoleRector,
}

// dashboardPrecedence is checked in order; the first role a user holds wins.
var dashboardPrecedence = []string{RoleIT, RoleRector, RoleMaintenance, RoleWarden, RolePanel}

var modelCategories = map[string]string{
	"logistics":      FacilitiesLogistics,
	"schedule_issue": CoursesTraining,
	"administrative": FinanceAdmin,
}

// IsTicketCategory reports whether c is one of TicketCategories.
func IsTicketCategory(c string) bool {
	_, ok := departments[c]
	return ok
}

// DepartmentFor returns the role that handles tickets in category.
func DepartmentFor(category string) string {
	if d, ok := departments[category]; ok {
		return d
	}
	return RoleAdmin
}

// CategoriesFor returns the ticket categories a department works on.
func CategoriesFor(role string) []string {
	var out []string
	for _, c := range TicketCategories {
		if departments[c] == role {
			out = append(out, c)
		}
	}
	return out
}

// DashboardFor picks the landing dashboard for a user holding roles.
func DashboardFor(roles []string) string {
	held := make(map[string]bool, len(roles))
	for _, r := range roles {
		held[r] = true
	}
	for _, r := range dashboardPrecedence {
		if held[r] {
			return r
		}
	}
	return RoleStudent
}

// TicketCategoryFor suggests a ticket category from the model's routing
// category. It returns "" when there is no sensible suggestion.
func TicketCategoryFor(modelCategory string, isTechnical bool) string {
	if isTechnical {
		return ITSupport
	}
	return modelCategories[modelCategory]
}
