package dto

// Availability is the side-effect-free answer to "can I sell this much".
type Availability struct {
	ProductID       int
	Requested       int
	Available       bool
	CurrentQuantity int
	Shortfall       int
}
