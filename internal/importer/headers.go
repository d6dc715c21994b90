package importer

import "strings"

// Canonical field names a spreadsheet column can map to.
const (
	FieldDate   = "date"
	FieldCaseID = "caseId"
	FieldBranch = "branch"
	FieldBrand  = "brand"
	FieldReason = "reason"
	FieldCity   = "city"
	FieldAging  = "aging"
	FieldStatus = "status"
	FieldRemark = "remark"
)

// headerAliases maps normalized header spellings to canonical field
// names. Lookup is exact-match after trim+lowercase; there is no fuzzy
// matching, and headers without an entry are silently ignored.
var headerAliases = map[string]string{
	// date
	"date":          FieldDate,
	"date logged":   FieldDate,
	"logged date":   FieldDate,
	"entry date":    FieldDate,
	"date of entry": FieldDate,

	// case reference
	"id":           FieldCaseID,
	"reference id": FieldCaseID,
	"case id":      FieldCaseID,
	"reference no": FieldCaseID,
	"ref id":       FieldCaseID,
	"ticket id":    FieldCaseID,

	// branch
	"branch":            FieldBranch,
	"location":          FieldBranch,
	"branch / location": FieldBranch,
	"store":             FieldBranch,
	"hub":               FieldBranch,

	// brand
	"brand":         FieldBrand,
	"model":         FieldBrand,
	"brand / model": FieldBrand,
	"product":       FieldBrand,
	"make":          FieldBrand,

	// reason
	"reason":        FieldReason,
	"issue":         FieldReason,
	"primary issue": FieldReason,
	"complaint":     FieldReason,
	"problem":       FieldReason,

	// city
	"city":     FieldCity,
	"region":   FieldCity,
	"district": FieldCity,
	"town":     FieldCity,

	// aging
	"aging":        FieldAging,
	"aging (days)": FieldAging,
	"days":         FieldAging,
	"pending days": FieldAging,
	"age":          FieldAging,

	// status
	"status":         FieldStatus,
	"current status": FieldStatus,
	"case status":    FieldStatus,

	// remark
	"remark":             FieldRemark,
	"remarks":            FieldRemark,
	"technician remarks": FieldRemark,
	"note":               FieldRemark,
	"comments":           FieldRemark,
}

// ResolveHeader maps one raw header cell to its canonical field name.
func ResolveHeader(raw string) (string, bool) {
	field, ok := headerAliases[strings.ToLower(strings.TrimSpace(raw))]
	return field, ok
}

// MapHeaders resolves a header row into a field -> column index map.
// When two columns resolve to the same field, the rightmost wins.
func MapHeaders(headers []Cell) map[string]int {
	mapping := make(map[string]int)
	for i, h := range headers {
		if field, ok := ResolveHeader(h.String()); ok {
			mapping[field] = i
		}
	}
	return mapping
}
