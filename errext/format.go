package errext

import (
	"errors"
)

// Format splits err into the message and the fields a log line shows for
// it: the hint, the exit code and the details of every HasFields error in
// the chain. Outer errors win over inner ones on the same field.
func Format(err error) (string, map[string]interface{}) {
	if err == nil {
		return "", nil
	}

	fields := make(map[string]interface{})
	for e := err; e != nil; e = errors.Unwrap(e) {
		ferr, ok := e.(HasFields)
		if !ok {
			continue
		}
		for k, v := range ferr.Fields() {
			if _, set := fields[k]; !set {
				fields[k] = v
			}
		}
	}
	if hint := HintOf(err); hint != "" {
		fields["hint"] = hint
	}
	if code, ok := ExitCodeOf(err); ok {
		fields["exit_code"] = int(code)
	}

	return err.Error(), fields
}
