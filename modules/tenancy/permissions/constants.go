package permissions

import "github.com/iota-uz/consentia/modules/tenancy/domain/caller"

type Category string

const (
	CategoryDashboard          Category = "dashboard"
	CategoryConsents           Category = "consents"
	CategoryMedicalRecords     Category = "medical_records"
	CategoryMRConsentTemplates Category = "mr_consent_templates"
	CategoryUsers              Category = "users"
	CategoryRoles              Category = "roles"
	CategoryBranches           Category = "branches"
	CategoryServices           Category = "services"
	CategoryQuestions          Category = "questions"
	CategoryClients            Category = "clients"
	CategoryTemplates          Category = "templates"
	CategorySettings           Category = "settings"
	CategoryInvoices           Category = "invoices"
	CategoryTenants            Category = "tenants"
)

const (
	ViewDashboard   = "view_dashboard"
	ViewGlobalStats = "view_global_stats"

	ViewConsents       = "view_consents"
	CreateConsents     = "create_consents"
	EditConsents       = "edit_consents"
	DeleteConsents     = "delete_consents"
	SignConsents       = "sign_consents"
	ResendConsentEmail = "resend_consent_email"

	ViewMedicalRecords   = "view_medical_records"
	CreateMedicalRecords = "create_medical_records"
	EditMedicalRecords   = "edit_medical_records"
	DeleteMedicalRecords = "delete_medical_records"
	CloseMedicalRecords  = "close_medical_records"
	SignMedicalRecords   = "sign_medical_records"
	ExportMedicalRecords = "export_medical_records"

	ViewMRConsentTemplates   = "view_mr_consent_templates"
	CreateMRConsentTemplates = "create_mr_consent_templates"
	EditMRConsentTemplates   = "edit_mr_consent_templates"
	DeleteMRConsentTemplates = "delete_mr_consent_templates"
	GenerateMRConsents       = "generate_mr_consents"
	ViewMRConsents           = "view_mr_consents"
	DeleteMRConsents         = "delete_mr_consents"

	ViewUsers       = "view_users"
	CreateUsers     = "create_users"
	EditUsers       = "edit_users"
	DeleteUsers     = "delete_users"
	ChangePasswords = "change_passwords"

	ViewRoles = "view_roles"
	EditRoles = "edit_roles"

	ViewBranches   = "view_branches"
	CreateBranches = "create_branches"
	EditBranches   = "edit_branches"
	DeleteBranches = "delete_branches"

	ViewServices   = "view_services"
	CreateServices = "create_services"
	EditServices   = "edit_services"
	DeleteServices = "delete_services"

	ViewQuestions   = "view_questions"
	CreateQuestions = "create_questions"
	EditQuestions   = "edit_questions"
	DeleteQuestions = "delete_questions"

	ViewClients   = "view_clients"
	CreateClients = "create_clients"
	EditClients   = "edit_clients"
	DeleteClients = "delete_clients"

	ViewTemplates   = "view_templates"
	CreateTemplates = "create_templates"
	EditTemplates   = "edit_templates"
	DeleteTemplates = "delete_templates"

	ViewSettings   = "view_settings"
	EditSettings   = "edit_settings"
	ConfigureEmail = "configure_email"

	ViewInvoices = "view_invoices"
	PayInvoices  = "pay_invoices"

	ManageTenants = caller.ManageTenants
)

// Permission describes one catalog entry.
type Permission struct {
	Key         string   `json:"key"`
	Category    Category `json:"category"`
	Description string   `json:"description"`
}

// All is the permission universe in display order.
var All = []Permission{
	{ViewDashboard, CategoryDashboard, "View the dashboard and statistics"},
	{ViewGlobalStats, CategoryDashboard, "View platform-wide statistics"},

	{ViewConsents, CategoryConsents, "View consents"},
	{CreateConsents, CategoryConsents, "Create consents"},
	{EditConsents, CategoryConsents, "Edit consents"},
	{DeleteConsents, CategoryConsents, "Delete consents"},
	{SignConsents, CategoryConsents, "Sign consents"},
	{ResendConsentEmail, CategoryConsents, "Resend the consent email"},

	{ViewMedicalRecords, CategoryMedicalRecords, "View medical records"},
	{CreateMedicalRecords, CategoryMedicalRecords, "Create medical records"},
	{EditMedicalRecords, CategoryMedicalRecords, "Edit medical records"},
	{DeleteMedicalRecords, CategoryMedicalRecords, "Delete medical records"},
	{CloseMedicalRecords, CategoryMedicalRecords, "Close medical records"},
	{SignMedicalRecords, CategoryMedicalRecords, "Sign medical records"},
	{ExportMedicalRecords, CategoryMedicalRecords, "Export medical records"},

	{ViewMRConsentTemplates, CategoryMRConsentTemplates, "View medical record consent templates"},
	{CreateMRConsentTemplates, CategoryMRConsentTemplates, "Create medical record consent templates"},
	{EditMRConsentTemplates, CategoryMRConsentTemplates, "Edit medical record consent templates"},
	{DeleteMRConsentTemplates, CategoryMRConsentTemplates, "Delete medical record consent templates"},
	{GenerateMRConsents, CategoryMRConsentTemplates, "Generate consents from medical records"},
	{ViewMRConsents, CategoryMRConsentTemplates, "View medical record consents"},
	{DeleteMRConsents, CategoryMRConsentTemplates, "Delete medical record consents"},

	{ViewUsers, CategoryUsers, "View users"},
	{CreateUsers, CategoryUsers, "Create users"},
	{EditUsers, CategoryUsers, "Edit users"},
	{DeleteUsers, CategoryUsers, "Delete users"},
	{ChangePasswords, CategoryUsers, "Change user passwords"},

	{ViewRoles, CategoryRoles, "View roles"},
	{EditRoles, CategoryRoles, "Edit role permissions"},

	{ViewBranches, CategoryBranches, "View branches"},
	{CreateBranches, CategoryBranches, "Create branches"},
	{EditBranches, CategoryBranches, "Edit branches"},
	{DeleteBranches, CategoryBranches, "Delete branches"},

	{ViewServices, CategoryServices, "View services"},
	{CreateServices, CategoryServices, "Create services"},
	{EditServices, CategoryServices, "Edit services"},
	{DeleteServices, CategoryServices, "Delete services"},

	{ViewQuestions, CategoryQuestions, "View questions"},
	{CreateQuestions, CategoryQuestions, "Create questions"},
	{EditQuestions, CategoryQuestions, "Edit questions"},
	{DeleteQuestions, CategoryQuestions, "Delete questions"},

	{ViewClients, CategoryClients, "View clients"},
	{CreateClients, CategoryClients, "Create clients"},
	{EditClients, CategoryClients, "Edit clients"},
	{DeleteClients, CategoryClients, "Delete clients"},

	{ViewTemplates, CategoryTemplates, "View consent templates"},
	{CreateTemplates, CategoryTemplates, "Create consent templates"},
	{EditTemplates, CategoryTemplates, "Edit consent templates"},
	{DeleteTemplates, CategoryTemplates, "Delete consent templates"},

	{ViewSettings, CategorySettings, "View settings"},
	{EditSettings, CategorySettings, "Edit settings"},
	{ConfigureEmail, CategorySettings, "Configure outgoing email"},

	{ViewInvoices, CategoryInvoices, "View invoices"},
	{PayInvoices, CategoryInvoices, "Pay invoices"},

	{ManageTenants, CategoryTenants, "Manage tenants (platform only)"},
}

// Keys returns every permission key in display order.
func Keys() []string {
	out := make([]string, len(All))
	for i, p := range All {
		out[i] = p.Key
	}
	return out
}
