package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ReadDotEnv parses KEY=VALUE lines from path. Blank lines and lines
// starting with '#' are ignored; surrounding quotes on values are removed.
// A missing file yields an empty map.
func ReadDotEnv(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("cannot open dotenv file %s: %w", path, err)
	}
	defer f.Close()

	out := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		i := strings.Index(line, "=")
		if i <= 0 {
			continue
		}
		k := strings.TrimSpace(line[:i])
		v := strings.TrimSpace(line[i+1:])
		if len(v) >= 2 && (v[0] == '"' && v[len(v)-1] == '"' || v[0] == '\'' && v[len(v)-1] == '\'') {
			v = v[1 : len(v)-1]
		}
		if k == "" {
			continue
		}
		out[k] = v
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read dotenv file %s: %w", path, err)
	}
	return out, nil
}

// ApplyDotEnv exports the values in path that are not already set in the
// process environment.
func ApplyDotEnv(path string) error {
	values, err := ReadDotEnv(path)
	if err != nil {
		return err
	}
	for k, v := range values {
		if _, set := os.LookupEnv(k); set {
			continue
		}
		if err := os.Setenv(k, v); err != nil {
			return fmt.Errorf("set %s: %w", k, err)
		}
	}
	return nil
}
