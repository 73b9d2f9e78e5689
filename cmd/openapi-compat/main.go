// Package main checks docs/swagger.yaml against the live route table and,
// optionally, against a base revision for backward compatibility.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"devconnector/internal/config"
	"devconnector/internal/server"

	"github.com/gofiber/fiber/v2"
	"gopkg.in/yaml.v3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var supportedMethods = map[string]struct{}{
	"get":    {},
	"put":    {},
	"post":   {},
	"delete": {},
	"patch":  {},
}

type operation struct {
	Responses map[string]struct{}
}

type parsedSpec struct {
	BasePath string
	Paths    map[string]map[string]operation
}

func main() {
	specPath := flag.String("spec", "docs/swagger.yaml", "OpenAPI swagger.yaml describing this revision")
	basePath := flag.String("base", "", "optional base swagger.yaml; removed operations and responses fail the check")
	flag.Parse()

	spec, err := loadSpec(*specPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load spec: %v\n", err)
		os.Exit(1)
	}

	routes, err := liveRoutes()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build route table: %v\n", err)
		os.Exit(1)
	}

	issues := compareRoutes(spec, routes)
	if strings.TrimSpace(*basePath) != "" {
		base, err := loadSpec(*basePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load base spec: %v\n", err)
			os.Exit(1)
		}
		issues = append(issues, compare(base, spec)...)
	}

	if len(issues) > 0 {
		fmt.Fprintln(os.Stderr, "openapi check failed:")
		for _, issue := range issues {
			fmt.Fprintf(os.Stderr, "- %s\n", issue)
		}
		os.Exit(1)
	}

	fmt.Println("openapi compatibility check passed")
}

// liveRoutes builds the real router against a throwaway database and returns
// the registered method/path pairs.
func liveRoutes() ([]fiber.Route, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, err
	}
	cfg := &config.Config{
		Env:              "test",
		JWTSecret:        config.DefaultJWTSecret,
		JWTExpirySeconds: 3600,
		GithubAPIURL:     "https://api.github.com",
	}
	srv, err := server.NewServerWithDeps(cfg, db, nil)
	if err != nil {
		return nil, err
	}
	return srv.App().GetRoutes(true), nil
}

func loadSpec(path string) (parsedSpec, error) {
	// #nosec G304: path comes from CLI flags in a dev tool
	raw, err := os.ReadFile(path)
	if err != nil {
		return parsedSpec{}, err
	}
	return parseSpec(raw)
}

func parseSpec(raw []byte) (parsedSpec, error) {
	doc := map[string]interface{}{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return parsedSpec{}, err
	}

	pathsRaw, ok := doc["paths"]
	if !ok {
		return parsedSpec{}, errors.New("missing top-level paths field")
	}

	pathsMap, ok := toMap(pathsRaw)
	if !ok {
		return parsedSpec{}, errors.New("paths is not an object")
	}

	spec := parsedSpec{Paths: make(map[string]map[string]operation)}
	if bp, ok := doc["basePath"].(string); ok {
		spec.BasePath = strings.TrimRight(bp, "/")
	}

	for pathKey, pathEntry := range pathsMap {
		pathOpsRaw, ok := toMap(pathEntry)
		if !ok {
			continue
		}

		ops := make(map[string]operation)
		for methodKey, methodEntry := range pathOpsRaw {
			methodLower := strings.ToLower(strings.TrimSpace(methodKey))
			if _, supported := supportedMethods[methodLower]; !supported {
				continue
			}

			methodMap, ok := toMap(methodEntry)
			if !ok {
				continue
			}

			responseSet := make(map[string]struct{})
			if responsesRaw, exists := methodMap["responses"]; exists {
				if responsesMap, ok := toMap(responsesRaw); ok {
					for code := range responsesMap {
						normalized := strings.ToLower(strings.TrimSpace(code))
						if normalized != "" {
							responseSet[normalized] = struct{}{}
						}
					}
				}
			}

			ops[methodLower] = operation{Responses: responseSet}
		}

		if len(ops) > 0 {
			spec.Paths[pathKey] = ops
		}
	}

	return spec, nil
}

func toMap(v interface{}) (map[string]interface{}, bool) {
	switch t := v.(type) {
	case map[string]interface{}:
		return t, true
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			ks, ok := k.(string)
			if !ok {
				continue
			}
			out[ks] = val
		}
		return out, true
	default:
		return nil, false
	}
}

// swaggerPath converts a fiber route under basePath to its swagger form:
// /api/posts/:id -> /posts/{id}. ok is false for routes outside basePath.
func swaggerPath(basePath, routePath string) (string, bool) {
	if !strings.HasPrefix(routePath, basePath+"/") && routePath != basePath {
		return "", false
	}
	rel := strings.TrimPrefix(routePath, basePath)
	if strings.Contains(rel, "*") {
		return "", false
	}

	segments := strings.Split(strings.Trim(rel, "/"), "/")
	for i, seg := range segments {
		if strings.HasPrefix(seg, ":") {
			segments[i] = "{" + strings.TrimSuffix(strings.TrimPrefix(seg, ":"), "?") + "}"
		}
	}
	return "/" + strings.Join(segments, "/"), true
}

// compareRoutes reports routes missing from the spec and documented
// operations with no route behind them.
func compareRoutes(spec parsedSpec, routes []fiber.Route) []string {
	live := make(map[string]map[string]struct{})
	for _, r := range routes {
		method := strings.ToLower(r.Method)
		if _, ok := supportedMethods[method]; !ok {
			continue
		}
		p, ok := swaggerPath(spec.BasePath, r.Path)
		if !ok {
			continue
		}
		if live[p] == nil {
			live[p] = make(map[string]struct{})
		}
		live[p][method] = struct{}{}
	}

	var issues []string
	for p, methods := range live {
		for method := range methods {
			if _, ok := spec.Paths[p][method]; !ok {
				issues = append(issues, fmt.Sprintf("undocumented route: %s %s", strings.ToUpper(method), p))
			}
		}
	}
	for p, ops := range spec.Paths {
		for method := range ops {
			if _, ok := live[p][method]; !ok {
				issues = append(issues, fmt.Sprintf("stale operation: %s %s", strings.ToUpper(method), p))
			}
		}
	}

	sort.Strings(issues)
	return issues
}

func compare(base, revision parsedSpec) []string {
	var issues []string

	for path, baseOps := range base.Paths {
		revOps, ok := revision.Paths[path]
		if !ok {
			issues = append(issues, fmt.Sprintf("removed path: %s", path))
			continue
		}

		for method, baseOp := range baseOps {
			revOp, ok := revOps[method]
			if !ok {
				issues = append(issues, fmt.Sprintf("removed operation: %s %s", strings.ToUpper(method), path))
				continue
			}

			for responseCode := range baseOp.Responses {
				if _, ok := revOp.Responses[responseCode]; !ok {
					issues = append(issues, fmt.Sprintf(
						"removed response code: %s %s -> %s",
						strings.ToUpper(method), path, strings.ToUpper(responseCode),
					))
				}
			}
		}
	}

	sort.Strings(issues)
	return issues
}
