package order

import "github.com/Taitilchheda/Taitil-Graphics-sub001/internal/domain/shared"

// Workflow error codes surfaced to HTTP clients
var (
	ErrUnknownProduct       = shared.NewDomainError("UNKNOWN_PRODUCT", "Product not found")
	ErrInvalidSignature     = shared.NewDomainError("INVALID_SIGNATURE", "Signature verification failed")
	ErrIntentMismatch       = shared.NewDomainError("INTENT_MISMATCH", "Payment intent does not belong to this order")
	ErrPaymentGateway       = shared.NewDomainError("PAYMENT_GATEWAY_ERROR", "Payment gateway request failed")
	ErrCarrier              = shared.NewDomainError("CARRIER_ERROR", "Carrier request failed")
	ErrUnrecognizedPayload  = shared.NewDomainError("UNRECOGNIZED_PAYLOAD", "Payload does not match any known shape")
	ErrReportStorage        = shared.NewDomainError("REPORT_STORAGE_ERROR", "Report could not be stored")
	ErrInvalidReportPeriod  = shared.NewDomainError("INVALID_REPORT_PERIOD", "Report period start must be before its end")
	ErrAlreadyRefunded      = shared.NewDomainError(shared.ErrInvalidState.Code, "Order has already been refunded")
	ErrAdminRequired        = shared.NewDomainError(shared.ErrForbidden.Code, "Administrator role required")
	ErrReportingUnavailable = shared.NewDomainError("REPORTING_UNAVAILABLE", "Report storage is not configured")
)
