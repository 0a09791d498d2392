package dto

// FieldViolationDTO detalle de una regla de validación incumplida.
type FieldViolationDTO struct {
	Field string `json:"field"`
	Code  string `json:"code"`
}

// ErrorResponse respuesta de error uniforme de la API.
type ErrorResponse struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Details []FieldViolationDTO `json:"details,omitempty"`
}
