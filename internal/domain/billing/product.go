package billing

// The single product sold by the platform.
const (
	ProductName        = "Premium Membership — Lifetime Access"
	ProductDescription = "One-time payment, premium lessons forever."
)
