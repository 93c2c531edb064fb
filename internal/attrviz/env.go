package attrviz

import (
	"fmt"
	"strconv"
	"strings"
)

type envLookupFunc func(string) (string, bool)

const (
	EnvNumBins       = "ATTRVIZ_NUM_BINS"
	EnvStyle         = "ATTRVIZ_STYLE"
	EnvColormap      = "ATTRVIZ_COLORMAP"
	EnvBinningMethod = "ATTRVIZ_BINNING_METHOD"
	EnvBinningScope  = "ATTRVIZ_BINNING_SCOPE"
	EnvDarkenBelow   = "ATTRVIZ_DARKEN_BELOW"
)

// applyEnvOverrides returns one message per variable that is set but cannot
// be parsed.
func applyEnvOverrides(s *Settings, lookup envLookupFunc) []string {
	var errs []string
	if v := firstEnv(lookup, EnvNumBins); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s=%q is not an integer", EnvNumBins, v))
		} else {
			s.NumBins = n
		}
	}
	if v := firstEnv(lookup, EnvStyle); v != "" {
		s.DefaultStyle = v
	}
	if v := firstEnv(lookup, EnvColormap); v != "" {
		s.Style.Colormap = v
	}
	if v := firstEnv(lookup, EnvBinningMethod); v != "" {
		s.Binning.Method = strings.ToLower(v)
	}
	if v := firstEnv(lookup, EnvBinningScope); v != "" {
		s.Binning.Scope = strings.ToLower(v)
	}
	if v := firstEnv(lookup, EnvDarkenBelow); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s=%q is not an integer", EnvDarkenBelow, v))
		} else {
			s.Style.DarkenBelow = n
		}
	}
	return errs
}

func firstEnv(lookup envLookupFunc, keys ...string) string {
	if lookup == nil {
		return ""
	}
	for _, key := range keys {
		if v, ok := lookup(key); ok {
			if strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		}
	}
	return ""
}
