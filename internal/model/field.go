package model

// Field is the key of one business attribute extracted from a research response.
type Field string

const (
	FieldWebsite        Field = "website"
	FieldCategory       Field = "category"
	FieldSize           Field = "size"
	FieldCountries      Field = "countries"
	FieldUAVType        Field = "uav_type"
	FieldLaunchRecovery Field = "launch_recovery"
	FieldServices       Field = "services_required"
	FieldManufacturing  Field = "manufacturing"
	FieldComposites     Field = "composites"
	FieldEmail          Field = "email"
	FieldPhone          Field = "phone"
	FieldLinkedIn       Field = "linkedin"
)

// NotFound is the sentinel value for a field the response did not mention.
// It is distinct from an empty string.
const NotFound = "N/A"

// FieldSpec binds a field to the label it carries in a research response
// and the column header it is exported under.
type FieldSpec struct {
	Field  Field
	Label  string
	Column string
}

// Fields is the ordered field table. Labels must not contain a colon.
var Fields = []FieldSpec{
	{FieldWebsite, "Website", "Website"},
	{FieldCategory, "Category", "Category/Products"},
	{FieldSize, "Size", "Company Size"},
	{FieldCountries, "Countries", "Countries"},
	{FieldUAVType, "UAV Type", "UAV Segment"},
	{FieldLaunchRecovery, "Launch Recovery", "Launch/Recovery"},
	{FieldServices, "Services", "Services Required"},
	{FieldManufacturing, "Manufacturing", "Needs Precision Mfg"},
	{FieldComposites, "Composites", "Needs Advanced Composites"},
	{FieldEmail, "Email", "Email"},
	{FieldPhone, "Phone", "Phone"},
	{FieldLinkedIn, "LinkedIn", "LinkedIn"},
}

// LookupField returns the spec for f.
func LookupField(f Field) (FieldSpec, bool) {
	for _, s := range Fields {
		if s.Field == f {
			return s, true
		}
	}
	return FieldSpec{}, false
}
