// ABOUTME: Version information
// ABOUTME: Product identity reported by the CLI
package version

const (
	Version      = "0.1.0"
	Product      = "voicemix"
	Manufacturer = "Resonate"
)

// String returns the full identity line
func String() string {
	return Product + " " + Version + " (" + Manufacturer + ")"
}
