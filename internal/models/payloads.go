package models

// These structs define the JSON payloads exchanged between the web client and
// the HTTP Cloud Functions.

// SendStoreFaxRequest is the input for the send-store-fax function.
type SendStoreFaxRequest struct {
	StoreNumber string `json:"storeNumber" validate:"required"`
	PDFBase64   string `json:"pdfBase64" validate:"required"`
	FileName    string `json:"fileName" validate:"required"`
	Type        string `json:"type"`
}

// SendStoreFaxResponse is returned once the fax email has been dispatched.
type SendStoreFaxResponse struct {
	Success    bool       `json:"success"`
	Message    string     `json:"message"`
	TrackingID string     `json:"trackingId"`
	Store      StoreBrief `json:"store"`
}

// StoreBrief is the resolved destination echoed back to the client.
type StoreBrief struct {
	StoreNumber string `json:"storeNumber"`
	Location    string `json:"location"`
}

// SendNumberFaxRequest is the input for the send-number-fax function.
type SendNumberFaxRequest struct {
	FaxNumber string `json:"faxNumber" validate:"required"`
	PDFBase64 string `json:"pdfBase64" validate:"required"`
	FileName  string `json:"fileName" validate:"required"`
	Type      string `json:"type"`
}

// SendNumberFaxResponse is returned once the fax email has been dispatched.
type SendNumberFaxResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	TrackingID string `json:"trackingId"`
	FaxNumber  string `json:"faxNumber"`
}

// ListStoresResponse is the output of the store-directory function.
type ListStoresResponse struct {
	Success bool          `json:"success"`
	Count   int           `json:"count"`
	Stores  []StoreRecord `json:"stores"`
}

// WebhookRequest is the payload the gateway posts back when a fax completes.
type WebhookRequest struct {
	TrackingID string `json:"trackingId"`
	Status     string `json:"status"`
	FaxKey     string `json:"faxKey"`
}

// WebhookResponse acknowledges a webhook delivery.
type WebhookResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
