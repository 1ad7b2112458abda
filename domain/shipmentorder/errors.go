package shipmentorder

import "errors"

var (
	// ErrShipmentOrderNotFound Shipment order does not exist
	ErrShipmentOrderNotFound = errors.New("shipment order not found")

	// ErrUnknownCompany Company is not present in the local projection yet
	ErrUnknownCompany = errors.New("unknown company for shipment order")
)
