package domain

// DeliveryRequest is the inbound request to arrange a delivery for an order.
// It is transient input and is never persisted by this service.
type DeliveryRequest struct {
	OrderID      int64
	UserID       int64
	DeliveryTime string
}

// UserInfo is the read-only customer record fetched from the user service.
type UserInfo struct {
	UserID  int64
	Address string
	Email   string
	Name    string
}

// AssignmentRequest is what the driver-assignment service needs to pick a
// driver for an order.
type AssignmentRequest struct {
	DeliveryTime string
	OrderID      int64
	UserAddress  string
}

// DriverAssignment is produced by the driver-assignment service. DeliveryID
// joins the assignment to the order record.
type DriverAssignment struct {
	DeliveryID int64
	DriverID   int64
}

// Order is the slice of the order record this service reads and mutates. The
// order service owns the full record; this is a transient copy, and two
// concurrent sagas touching the same order can interleave their
// read-modify-write (lost update). The fix belongs in the order service's
// interface (a conditional update), not here.
type Order struct {
	OrderID        int64          `json:"order_id"`
	DeliveryID     int64          `json:"delivery_id"`
	DeliveryStatus DeliveryStatus `json:"delivery_status"`
}
