package dto

// PageResponse metadatos de página en respuestas paginadas.
type PageResponse struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// DeletedResponse respuesta de un borrado exitoso.
type DeletedResponse struct {
	ID string `json:"id"`
}
