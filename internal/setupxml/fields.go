package setupxml

// Field maps an element of setup.xml to the environment variable that
// supplies its value.
type Field struct {
	Element string
	EnvVar  string
	Secret  bool
}

// Settings holds setup values keyed by environment variable name.
type Settings map[string]string

const (
	BaseURLElement            = "baseUrl"
	BigParentDirectoryElement = "bigParentDirectory"

	// BigParentDirectory is where the ERDDAP chart mounts its data volume.
	BigParentDirectory = "/erddapData/"
)

// Fields are the admin and email settings of setup.xml, in document order.
var Fields = []Field{
	{Element: "emailEverythingTo", EnvVar: "EMAILEVERYTHINGTO"},
	{Element: "emailFromAddress", EnvVar: "EMAILFROMADDRESS"},
	{Element: "emailUserName", EnvVar: "EMAILUSERNAME"},
	{Element: "emailPassword", EnvVar: "EMAILPASSWORD", Secret: true},
	{Element: "emailProperties", EnvVar: "EMAILPROPERTIES"},
	{Element: "emailSmtpHost", EnvVar: "EMAILSMTPHOST"},
	{Element: "emailSmtpPort", EnvVar: "EMAILSMTPPORT"},
	{Element: "adminInstitution", EnvVar: "ADMININSTITUTION"},
	{Element: "adminInstitutionUrl", EnvVar: "ADMININSTITUTIONURL"},
	{Element: "adminIndividualName", EnvVar: "ADMININDIVIDUALNAME"},
	{Element: "adminPosition", EnvVar: "ADMINPOSITION"},
	{Element: "adminPhone", EnvVar: "ADMINPHONE"},
	{Element: "adminAddress", EnvVar: "ADMINADDRESS"},
	{Element: "adminCity", EnvVar: "ADMINCITY"},
	{Element: "adminStateOrProvince", EnvVar: "ADMINSTATEORPROVINCE"},
	{Element: "adminPostalCode", EnvVar: "ADMINPOSTALCODE"},
	{Element: "adminCountry", EnvVar: "ADMINCOUNTRY"},
	{Element: "adminEmail", EnvVar: "ADMINEMAIL"},
	{Element: "flagKeyKey", EnvVar: "FLAGKEYKEY", Secret: true},
}
