package external

import (
	"errors"
	"fmt"
	"strings"
)

// Vars maps placeholders (including braces, e.g. "{url}") to values.
type Vars map[string]string

// Expand substitutes placeholders in every template argument. Placeholders
// may appear anywhere inside an argument ("--config={config}"). Unknown
// placeholders are left as written. Arguments that consist solely of a
// placeholder expanding to the empty string are dropped so optional values
// do not become empty positional arguments.
func Expand(template []string, vars Vars) ([]string, error) {
	if len(template) == 0 || strings.TrimSpace(template[0]) == "" {
		return nil, errors.New("command template is empty")
	}

	pairs := make([]string, 0, len(vars)*2)
	for key, value := range vars {
		pairs = append(pairs, key, value)
	}
	replacer := strings.NewReplacer(pairs...)

	argv := make([]string, 0, len(template))
	for i, arg := range template {
		expanded := replacer.Replace(arg)
		if i > 0 && expanded == "" {
			if _, whole := vars[arg]; whole {
				continue
			}
		}
		argv = append(argv, expanded)
	}
	if strings.TrimSpace(argv[0]) == "" {
		return nil, fmt.Errorf("command template %q expands to an empty program", template[0])
	}
	return argv, nil
}
