package model

type SignupRequest struct {
	Email           string   `json:"email"`
	Password        string   `json:"password"`
	Name            string   `json:"name"`
	FirstName       string   `json:"first_name"`
	Telephone       string   `json:"telephone"`
	IsNewbie        bool     `json:"is_newbie"`
	RaisonSociale   string   `json:"raison_sociale"`
	Siret           string   `json:"siret"`
	AddressLine1    string   `json:"address_line_1"`
	ZipCode         string   `json:"zip_code"`
	City            string   `json:"city"`
	Country         string   `json:"country"`
	ProfessionNames []string `json:"profession_names"`
}

type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type CreateProjectRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	StartDate    string `json:"start_date"`
	AddressID    *int64 `json:"address_id"`
	CustomerID   int64  `json:"customer_id"`
	EntrepriseID *int64 `json:"entreprise_id"`
	IsFinished   *bool  `json:"is_finished"`
}

type UpdateProjectRequest struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	StartDate    *string `json:"start_date"`
	AddressID    *int64  `json:"address_id"`
	EntrepriseID *int64  `json:"entreprise_id"`
	IsFinished   *bool   `json:"is_finished"`
}

type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Status      string `json:"status"`
	UserID      *int64 `json:"user_id"`
}

type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
	Status      *string `json:"status"`
	UserID      *int64  `json:"user_id"`
}

type CreateEstimateRequest struct {
	Object         string `json:"object"`
	EstimateNumber int64  `json:"estimate_number"`
	PaymentType    string `json:"payment_type"`
	LimitDate      string `json:"limit_date"`
	ProjectID      int64  `json:"project_id"`
}

type UpdateEstimateRequest struct {
	Object                *string `json:"object"`
	PaymentType           *string `json:"payment_type"`
	IsValidatedByCustomer *bool   `json:"is_validated_by_customer"`
	LimitDate             *string `json:"limit_date"`
}

type CreateLineRequest struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

type CreateEstimateWithLinesRequest struct {
	CreateEstimateRequest
	Lines []CreateLineRequest `json:"lines"`
}

type CreateInvoiceRequest struct {
	InvoiceNumber int64  `json:"invoice_number"`
	BillingDate   string `json:"billing_date"`
	EstimateID    int64  `json:"estimate_id"`
}

type UpdateInvoiceRequest struct {
	BillingDate *string `json:"billing_date"`
	IsPaid      *bool   `json:"is_paid"`
}

type CreateAddressRequest struct {
	AddressLine1 string `json:"address_line_1"`
	ZipCode      string `json:"zip_code"`
	City         string `json:"city"`
	Country      string `json:"country"`
}

type CreateProfessionRequest struct {
	ProfessionName string `json:"profession_name"`
}

type UpdateProfileRequest struct {
	Name          *string `json:"name"`
	FirstName     *string `json:"first_name"`
	Telephone     *string `json:"telephone"`
	IsNewbie      *bool   `json:"is_newbie"`
	RaisonSociale *string `json:"raison_sociale"`
	Siret         *string `json:"siret"`
}

type CreateNotificationRequest struct {
	Title      string  `json:"title"`
	Body       string  `json:"body"`
	Kind       string  `json:"kind"`
	Recipients []int64 `json:"recipients"`
}

type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}
