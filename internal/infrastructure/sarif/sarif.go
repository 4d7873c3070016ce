// Package sarif holds the subset of the SARIF 2.1.0 object model that is
// written by the report exporter and read by the generic SARIF importer.
package sarif

// Version is the SARIF version written by this package
const Version = "2.1.0"

// Schema is the SARIF 2.1.0 schema recognized by GitHub code scanning and editors
const Schema = "https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json"

// Result levels
const (
	LevelError   = "error"
	LevelWarning = "warning"
	LevelNote    = "note"
	LevelNone    = "none"
)

// SecuritySeverityKey is the property carrying a 0-10 CVSS-like score
const SecuritySeverityKey = "security-severity"

// Log is the root SARIF document
type Log struct {
	Version string `json:"version"`
	Schema  string `json:"$schema"`
	Runs    []Run  `json:"runs"`
}

// Run groups the results of one tool
type Run struct {
	Tool    Tool     `json:"tool"`
	Results []Result `json:"results"`
}

// Tool describes the analysis tool
type Tool struct {
	Driver Driver `json:"driver"`
}

// Driver is the tool component that produced the results
type Driver struct {
	Name           string `json:"name"`
	Version        string `json:"version,omitempty"`
	InformationURI string `json:"informationUri,omitempty"`
	Rules          []Rule `json:"rules,omitempty"`
}

// Rule is a reporting descriptor
type Rule struct {
	ID               string                 `json:"id"`
	Name             string                 `json:"name,omitempty"`
	ShortDescription *Message               `json:"shortDescription,omitempty"`
	HelpURI          string                 `json:"helpUri,omitempty"`
	Properties       map[string]interface{} `json:"properties,omitempty"`
}

// Result is a single finding
type Result struct {
	RuleID       string                 `json:"ruleId"`
	Level        string                 `json:"level"`
	Message      Message                `json:"message"`
	Locations    []Location             `json:"locations,omitempty"`
	Fingerprints map[string]string      `json:"partialFingerprints,omitempty"`
	Properties   map[string]interface{} `json:"properties,omitempty"`
}

// Message is a plain text message
type Message struct {
	Text string `json:"text"`
}

// Location wraps a physical location
type Location struct {
	PhysicalLocation PhysicalLocation `json:"physicalLocation"`
}

// PhysicalLocation points to a region of an artifact
type PhysicalLocation struct {
	ArtifactLocation ArtifactLocation `json:"artifactLocation"`
	Region           *Region          `json:"region,omitempty"`
}

// ArtifactLocation identifies a file or URL
type ArtifactLocation struct {
	URI string `json:"uri"`
}

// Region is a line range, 1-based
type Region struct {
	StartLine int `json:"startLine"`
	EndLine   int `json:"endLine,omitempty"`
}
