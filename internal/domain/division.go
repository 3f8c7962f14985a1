package domain

// Division is an organizational unit that owns a subset of tickets.
type Division string

const (
	DivisionIT              Division = "IT & Teknologi"
	DivisionHR              Division = "Human Resources"
	DivisionFinance         Division = "Finance & Accounting"
	DivisionSales           Division = "Sales & Marketing"
	DivisionOperations      Division = "Operations"
	DivisionCustomerService Division = "Customer Service"
	DivisionLogistics       Division = "Logistics & Supply Chain"
	DivisionQA              Division = "Quality Assurance"
	DivisionRnD             Division = "Research & Development"
	DivisionGeneral         Division = "Admin & General"
)

// Divisions lists every known division in canonical order.
var Divisions = []Division{
	DivisionIT,
	DivisionHR,
	DivisionFinance,
	DivisionSales,
	DivisionOperations,
	DivisionCustomerService,
	DivisionLogistics,
	DivisionQA,
	DivisionRnD,
	DivisionGeneral,
}

// IsValidDivision reports whether the value names a known division.
func IsValidDivision(value string) bool {
	for _, d := range Divisions {
		if string(d) == value {
			return true
		}
	}
	return false
}
