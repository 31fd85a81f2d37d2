package settings

// UpdateSettingsRequest replaces the company profile fields.
type UpdateSettingsRequest struct {
	Empresa  string `json:"empresa" validate:"required,max=300"`
	CNPJ     string `json:"cnpj" validate:"omitempty,max=20"`
	Endereco string `json:"endereco" validate:"omitempty,max=500"`
}
