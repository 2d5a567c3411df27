package pkg

import (
	"regexp"
	"strings"
)

// GlobalRegion is the pseudo-region IAM clients are bound to. IAM users are
// global to the account rather than region-specific.
const GlobalRegion = "aws-global"

// regionPattern matches names such as us-east-1, us-gov-west-1 or cn-northwest-1.
var regionPattern = regexp.MustCompile(`^[a-z]{2}(-[a-z]+)+-[0-9]{1,2}$`)

// ValidateRegion returns an *InvalidRegionError when region is not usable.
func ValidateRegion(region string) error {
	switch {
	case region == "":
		return &InvalidRegionError{Region: region, Reason: "region is not set"}
	case strings.TrimSpace(region) != region:
		return &InvalidRegionError{Region: region, Reason: "region contains whitespace"}
	case len(region) > 32:
		return &InvalidRegionError{Region: region, Reason: "region name is too long"}
	case !regionPattern.MatchString(region):
		return &InvalidRegionError{Region: region, Reason: "region name is malformed"}
	}
	return nil
}
