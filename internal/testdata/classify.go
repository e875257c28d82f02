package testdata

import "regexp"

// fieldPattern pairs a field-name regex with the kind it identifies.
// Order matters: more specific patterns must precede general ones, e.g.
// username before the full_name catch-all so "username" never matches
// "name".
type fieldPattern struct {
	re   *regexp.Regexp
	kind FieldKind
}

var fieldPatterns = []fieldPattern{
	{regexp.MustCompile(`(?i)user[_\s]?name|username|login|user[_\s]?id`), FieldUsername},
	{regexp.MustCompile(`(?i)first[_\s]?name|fname|given[_\s]?name`), FieldFirstName},
	{regexp.MustCompile(`(?i)last[_\s]?name|lname|surname|family[_\s]?name`), FieldLastName},
	{regexp.MustCompile(`(?i)full[_\s]?name|name`), FieldFullName},
	{regexp.MustCompile(`(?i)email|e-mail|mail`), FieldEmail},
	{regexp.MustCompile(`(?i)phone|telephone|mobile|cell`), FieldPhone},
	{regexp.MustCompile(`(?i)confirm[_\s]?password|password[_\s]?confirm|re-?type[_\s]?password|repeat[_\s]?password`), FieldConfirmPassword},
	{regexp.MustCompile(`(?i)password|passwd|pwd|secret`), FieldPassword},
	{regexp.MustCompile(`(?i)street|address[_\s]?line|address1|address`), FieldStreetAddress},
	{regexp.MustCompile(`(?i)city|town`), FieldCity},
	{regexp.MustCompile(`(?i)state|province|region`), FieldState},
	{regexp.MustCompile(`(?i)zip|postal|postcode`), FieldZip},
	{regexp.MustCompile(`(?i)country`), FieldCountry},
	{regexp.MustCompile(`(?i)company|organization|org|business`), FieldCompany},
	{regexp.MustCompile(`(?i)job[_\s]?title|title|position|role`), FieldJobTitle},
	{regexp.MustCompile(`(?i)date[_\s]?of[_\s]?birth|dob|birth[_\s]?date|birthday`), FieldDateOfBirth},
	{regexp.MustCompile(`(?i)date|day`), FieldDate},
	{regexp.MustCompile(`(?i)age`), FieldAge},
	{regexp.MustCompile(`(?i)quantity|qty|count|number`), FieldQuantity},
	{regexp.MustCompile(`(?i)description|desc|about|bio|summary`), FieldDescription},
	{regexp.MustCompile(`(?i)url|website|link|homepage`), FieldURL},
}

// ClassifyField matches a field name or NL hint ("a valid email") against
// the known field patterns, first normalized through ExtractFieldHint.
func ClassifyField(fieldName string) (FieldKind, bool) {
	hint := ExtractFieldHint(fieldName)
	for _, p := range fieldPatterns {
		if p.re.MatchString(hint) {
			return p.kind, true
		}
	}
	return "", false
}
