package domain

// Country describes one entry of the static calling-code table.
type Country struct {
	CallingCode string // bare digit string, e.g. "44"
	Region      string // ISO 3166-1 alpha-2
	Name        string
}

// callingCodes is the static calling-code table. Loaded once at package
// init and treated as immutable thereafter. Shared NANP members are listed
// under their own region where a distinct code exists; "1" maps to the US
// as the NANP anchor.
var callingCodes = map[string]Country{
	"1":   {CallingCode: "1", Region: "US", Name: "United States"},
	"7":   {CallingCode: "7", Region: "RU", Name: "Russia"},
	"20":  {CallingCode: "20", Region: "EG", Name: "Egypt"},
	"27":  {CallingCode: "27", Region: "ZA", Name: "South Africa"},
	"30":  {CallingCode: "30", Region: "GR", Name: "Greece"},
	"31":  {CallingCode: "31", Region: "NL", Name: "Netherlands"},
	"32":  {CallingCode: "32", Region: "BE", Name: "Belgium"},
	"33":  {CallingCode: "33", Region: "FR", Name: "France"},
	"34":  {CallingCode: "34", Region: "ES", Name: "Spain"},
	"36":  {CallingCode: "36", Region: "HU", Name: "Hungary"},
	"39":  {CallingCode: "39", Region: "IT", Name: "Italy"},
	"40":  {CallingCode: "40", Region: "RO", Name: "Romania"},
	"41":  {CallingCode: "41", Region: "CH", Name: "Switzerland"},
	"43":  {CallingCode: "43", Region: "AT", Name: "Austria"},
	"44":  {CallingCode: "44", Region: "GB", Name: "United Kingdom"},
	"45":  {CallingCode: "45", Region: "DK", Name: "Denmark"},
	"46":  {CallingCode: "46", Region: "SE", Name: "Sweden"},
	"47":  {CallingCode: "47", Region: "NO", Name: "Norway"},
	"48":  {CallingCode: "48", Region: "PL", Name: "Poland"},
	"49":  {CallingCode: "49", Region: "DE", Name: "Germany"},
	"52":  {CallingCode: "52", Region: "MX", Name: "Mexico"},
	"54":  {CallingCode: "54", Region: "AR", Name: "Argentina"},
	"55":  {CallingCode: "55", Region: "BR", Name: "Brazil"},
	"60":  {CallingCode: "60", Region: "MY", Name: "Malaysia"},
	"61":  {CallingCode: "61", Region: "AU", Name: "Australia"},
	"62":  {CallingCode: "62", Region: "ID", Name: "Indonesia"},
	"63":  {CallingCode: "63", Region: "PH", Name: "Philippines"},
	"64":  {CallingCode: "64", Region: "NZ", Name: "New Zealand"},
	"65":  {CallingCode: "65", Region: "SG", Name: "Singapore"},
	"66":  {CallingCode: "66", Region: "TH", Name: "Thailand"},
	"81":  {CallingCode: "81", Region: "JP", Name: "Japan"},
	"82":  {CallingCode: "82", Region: "KR", Name: "South Korea"},
	"84":  {CallingCode: "84", Region: "VN", Name: "Vietnam"},
	"86":  {CallingCode: "86", Region: "CN", Name: "China"},
	"90":  {CallingCode: "90", Region: "TR", Name: "Turkey"},
	"91":  {CallingCode: "91", Region: "IN", Name: "India"},
	"92":  {CallingCode: "92", Region: "PK", Name: "Pakistan"},
	"93":  {CallingCode: "93", Region: "AF", Name: "Afghanistan"},
	"94":  {CallingCode: "94", Region: "LK", Name: "Sri Lanka"},
	"95":  {CallingCode: "95", Region: "MM", Name: "Myanmar"},
	"98":  {CallingCode: "98", Region: "IR", Name: "Iran"},
	"212": {CallingCode: "212", Region: "MA", Name: "Morocco"},
	"233": {CallingCode: "233", Region: "GH", Name: "Ghana"},
	"234": {CallingCode: "234", Region: "NG", Name: "Nigeria"},
	"254": {CallingCode: "254", Region: "KE", Name: "Kenya"},
	"351": {CallingCode: "351", Region: "PT", Name: "Portugal"},
	"353": {CallingCode: "353", Region: "IE", Name: "Ireland"},
	"358": {CallingCode: "358", Region: "FI", Name: "Finland"},
	"380": {CallingCode: "380", Region: "UA", Name: "Ukraine"},
	"420": {CallingCode: "420", Region: "CZ", Name: "Czechia"},
	"880": {CallingCode: "880", Region: "BD", Name: "Bangladesh"},
	"886": {CallingCode: "886", Region: "TW", Name: "Taiwan"},
	"971": {CallingCode: "971", Region: "AE", Name: "United Arab Emirates"},
	"972": {CallingCode: "972", Region: "IL", Name: "Israel"},
	"998": {CallingCode: "998", Region: "UZ", Name: "Uzbekistan"},
}

// LookupCallingCode returns the static table entry for a calling-code
// prefix, if the prefix is listed.
func LookupCallingCode(prefix string) (Country, bool) {
	c, ok := callingCodes[prefix]
	return c, ok
}
