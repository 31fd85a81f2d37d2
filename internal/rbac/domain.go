package rbac

// Permission actions known to the application. Permissions are immutable
// reference data seeded at startup and granted to users via set-replacement.
const (
	PermReportView   = "relatorio:visualizar"
	PermReportCreate = "relatorio:criar"
	PermReportSign   = "relatorio:assinar"
	PermReportExport = "relatorio:exportar"
	PermManageUsers  = "usuario:gerenciar"
)

// Permission represents an atomic capability.
type Permission struct {
	ID          int64  `json:"id"`
	Action      string `json:"action"`
	Description string `json:"description"`
}

// Catalog lists every permission the application seeds.
func Catalog() []Permission {
	return []Permission{
		{Action: PermReportView, Description: "Visualizar relatórios"},
		{Action: PermReportCreate, Description: "Criar e editar relatórios"},
		{Action: PermReportSign, Description: "Assinar relatórios"},
		{Action: PermReportExport, Description: "Exportar relatórios em PDF"},
		{Action: PermManageUsers, Description: "Gerenciar usuários e permissões"},
	}
}
