package plan

// Unlimited marks a limit that is never reached.
const Unlimited = -1

type Resource string

const (
	ResourceUsers              Resource = "users"
	ResourceBranches           Resource = "branches"
	ResourceConsents           Resource = "consents"
	ResourceMedicalRecords     Resource = "medical_records"
	ResourceMRConsentTemplates Resource = "mr_consent_templates"
	ResourceConsentTemplates   Resource = "consent_templates"
	ResourceServices           Resource = "services"
	ResourceQuestions          Resource = "questions"
	ResourceStorage            Resource = "storage"
)

// Resources lists every quota-tracked kind in reporting order.
var Resources = []Resource{
	ResourceUsers,
	ResourceBranches,
	ResourceConsents,
	ResourceMedicalRecords,
	ResourceMRConsentTemplates,
	ResourceConsentTemplates,
	ResourceServices,
	ResourceQuestions,
	ResourceStorage,
}

func ParseResource(s string) (Resource, bool) {
	for _, r := range Resources {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

// Unit is the measurement unit reported for the resource.
func (r Resource) Unit() string {
	if r == ResourceStorage {
		return "MB"
	}
	return ""
}

func IsUnbounded(limit int) bool {
	return limit == Unlimited
}
