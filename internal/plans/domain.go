package plans

// Plan names form a closed tier set.
const (
	NameBasic      = "Basic"
	NamePro        = "Pro"
	NameEnterprise = "Enterprise"
)

// Unlimited marks a plan without a dashboard cap.
const Unlimited = -1

// Plan is immutable reference data describing a priced tier.
type Plan struct {
	ID                string
	Name              string
	Price             int64
	DashboardsAllowed int
}
