// Package openapi builds the OpenAPI 3.0 description of the JSON API by
// reflecting on the registered resource models.
package openapi

import (
	"encoding/json"
	"net/http"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
)

// =============================================================================
// Generator
// =============================================================================

// Generator produces an OpenAPI document from registered resources and actions.
type Generator struct {
	title       string
	version     string
	description string
	servers     []string
	resources   []ResourceInfo
	actions     []ActionInfo
	mu          sync.RWMutex
	cachedSpec  *openapi3.T
}

// ResourceInfo describes a collection exposed at /api/v1/{Name}.
type ResourceInfo struct {
	Name           string // collection name, e.g. "posts"
	IDParam        string // item path parameter, "id" when empty
	Model          any    // struct whose JSON fields become the schema
	Input          any    // request body struct for create/update, Model when nil
	SupportsList   bool   // GET /{name}
	SupportsGet    bool   // GET /{name}/{id}
	SupportsCreate bool   // POST /{name}
	SupportsUpdate bool   // PATCH /{name}/{id}
	SupportsDelete bool   // DELETE /{name}/{id}
	AuthRequired   bool   // writes need a session
}

// ActionInfo describes a single non-CRUD endpoint.
type ActionInfo struct {
	Method       string
	Path         string // relative to /api/v1, chi-style {params}
	Summary      string
	Tag          string
	Input        any
	Output       any
	Status       int
	AuthRequired bool
}

// Option configures the generator.
type Option func(*Generator)

// WithTitle sets the API title.
func WithTitle(title string) Option {
	return func(g *Generator) {
		g.title = title
	}
}

// WithVersion sets the API version.
func WithVersion(version string) Option {
	return func(g *Generator) {
		g.version = version
	}
}

// WithDescription sets the API description.
func WithDescription(description string) Option {
	return func(g *Generator) {
		g.description = description
	}
}

// WithServer adds a server URL.
func WithServer(url string) Option {
	return func(g *Generator) {
		g.servers = append(g.servers, url)
	}
}

// NewGenerator creates a new OpenAPI generator.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		title:       "Yatube API",
		version:     "1.0.0",
		description: "Posts, groups, comments and follows",
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// RegisterResource adds a resource to the document.
func (g *Generator) RegisterResource(info ResourceInfo) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.resources = append(g.resources, info)
	g.cachedSpec = nil
}

// RegisterAction adds a single endpoint to the document.
func (g *Generator) RegisterAction(info ActionInfo) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.actions = append(g.actions, info)
	g.cachedSpec = nil
}

// Generate produces the OpenAPI document. The result is cached until the next
// registration.
func (g *Generator) Generate() *openapi3.T {
	g.mu.RLock()
	if g.cachedSpec != nil {
		spec := g.cachedSpec
		g.mu.RUnlock()
		return spec
	}
	g.mu.RUnlock()

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cachedSpec != nil {
		return g.cachedSpec
	}

	spec := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       g.title,
			Version:     g.version,
			Description: g.description,
		},
		Servers: make(openapi3.Servers, 0, len(g.servers)),
		Paths:   openapi3.NewPaths(),
		Components: &openapi3.Components{
			Schemas:         make(openapi3.Schemas),
			SecuritySchemes: make(openapi3.SecuritySchemes),
		},
	}

	for _, url := range g.servers {
		spec.Servers = append(spec.Servers, &openapi3.Server{URL: url})
	}

	g.addCommonSchemas(spec)

	for _, res := range g.resources {
		g.addResourceToSpec(spec, res)
	}
	for _, action := range g.actions {
		g.addActionToSpec(spec, action)
	}

	g.cachedSpec = spec
	return spec
}

// Handler serves the document as JSON.
func (g *Generator) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		spec := g.Generate()

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Access-Control-Allow-Origin", "*")

		if err := json.NewEncoder(w).Encode(spec); err != nil {
			http.Error(w, "failed to encode OpenAPI document", http.StatusInternalServerError)
		}
	}
}

// =============================================================================
// Schema Generation
// =============================================================================

func (g *Generator) addCommonSchemas(spec *openapi3.T) {
	spec.Components.Schemas["Page"] = &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"number":    intSchema(),
				"per_page":  intSchema(),
				"count":     intSchema(),
				"num_pages": intSchema(),
			},
		},
	}

	spec.Components.Schemas["Error"] = &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"error": stringSchema(),
				"code":  stringSchema(),
				"fields": &openapi3.SchemaRef{
					Value: &openapi3.Schema{
						Type:                 &openapi3.Types{"object"},
						AdditionalProperties: openapi3.AdditionalProperties{Schema: stringSchema()},
					},
				},
			},
			Required: []string{"error", "code"},
		},
	}

	spec.Components.SecuritySchemes["session"] = &openapi3.SecuritySchemeRef{
		Value: &openapi3.SecurityScheme{
			Type:        "apiKey",
			In:          "cookie",
			Name:        "yatube_session",
			Description: "Session cookie issued by the login form",
		},
	}
	spec.Components.SecuritySchemes["bearer"] = &openapi3.SecuritySchemeRef{
		Value: openapi3.NewJWTSecurityScheme(),
	}
}

func (g *Generator) addResourceToSpec(spec *openapi3.T, res ResourceInfo) {
	basePath := "/api/v1/" + res.Name
	idParam := res.IDParam
	if idParam == "" {
		idParam = "id"
	}

	schemaName := capitalize(singularize(res.Name))
	spec.Components.Schemas[schemaName] = g.extractSchema(res.Model)

	input := res.Input
	if input == nil {
		input = res.Model
	}
	inputName := schemaName + "Input"
	spec.Components.Schemas[inputName] = g.extractSchema(input)

	spec.Components.Schemas[schemaName+"List"] = &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"results": &openapi3.SchemaRef{
					Value: &openapi3.Schema{
						Type:  &openapi3.Types{"array"},
						Items: componentRef(schemaName),
					},
				},
				"page": componentRef("Page"),
			},
		},
	}

	collection := &openapi3.PathItem{}
	if res.SupportsList {
		collection.Get = g.createListOperation(res, schemaName)
	}
	if res.SupportsCreate {
		collection.Post = g.createCreateOperation(res, schemaName, inputName)
	}
	if collection.Get != nil || collection.Post != nil {
		spec.Paths.Set(basePath, collection)
	}

	item := &openapi3.PathItem{
		Parameters: openapi3.Parameters{pathParam(idParam)},
	}
	if res.SupportsGet {
		item.Get = g.createGetOperation(res, schemaName)
	}
	if res.SupportsUpdate {
		item.Patch = g.createUpdateOperation(res, schemaName, inputName)
	}
	if res.SupportsDelete {
		item.Delete = g.createDeleteOperation(res, schemaName)
	}
	if item.Get != nil || item.Patch != nil || item.Delete != nil {
		spec.Paths.Set(basePath+"/{"+idParam+"}", item)
	}
}

func (g *Generator) addActionToSpec(spec *openapi3.T, action ActionInfo) {
	path := "/api/v1" + action.Path
	item := spec.Paths.Value(path)
	if item == nil {
		item = &openapi3.PathItem{}
		for _, name := range pathParams(action.Path) {
			item.Parameters = append(item.Parameters, pathParam(name))
		}
		spec.Paths.Set(path, item)
	}

	status := action.Status
	if status == 0 {
		status = http.StatusOK
	}

	op := &openapi3.Operation{
		OperationID: operationID(action.Method, action.Path),
		Summary:     action.Summary,
		Tags:        []string{action.Tag},
		Responses:   openapi3.NewResponses(),
	}
	if action.Input != nil {
		op.RequestBody = jsonBody(g.extractSchema(action.Input))
	}
	if action.Output != nil {
		op.AddResponse(status, jsonResponse(http.StatusText(status), g.goTypeToSchema(reflect.TypeOf(action.Output))))
	} else {
		op.AddResponse(status, openapi3.NewResponse().WithDescription(http.StatusText(status)))
	}
	addErrorResponses(op, action.AuthRequired, http.StatusNotFound)
	if action.AuthRequired {
		op.Security = sessionSecurity()
	}

	item.SetOperation(action.Method, op)
}

// extractSchema builds an object schema from a struct's JSON fields.
func (g *Generator) extractSchema(model any) *openapi3.SchemaRef {
	t := reflect.TypeOf(model)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	schema := &openapi3.Schema{
		Type:       &openapi3.Types{"object"},
		Properties: make(openapi3.Schemas),
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}

		name := field.Name
		if jsonTag != "" {
			if parts := strings.Split(jsonTag, ","); parts[0] != "" {
				name = parts[0]
			}
		}

		// Embedded structs without a JSON name are flattened, as encoding/json does.
		if field.Anonymous && jsonTag == "" && field.Type.Kind() == reflect.Struct {
			embedded := g.extractSchema(reflect.New(field.Type).Interface())
			for k, v := range embedded.Value.Properties {
				schema.Properties[k] = v
			}
			continue
		}

		if propSchema := g.goTypeToSchema(field.Type); propSchema != nil {
			schema.Properties[name] = propSchema
		}
	}

	return &openapi3.SchemaRef{Value: schema}
}

// goTypeToSchema converts a Go type to an OpenAPI schema.
func (g *Generator) goTypeToSchema(t reflect.Type) *openapi3.SchemaRef {
	switch t.Kind() {
	case reflect.String:
		return stringSchema()

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32:
		return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"integer"}, Format: "int32"}}

	case reflect.Int64:
		return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"integer"}, Format: "int64"}}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return intSchema()

	case reflect.Float32, reflect.Float64:
		return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"number"}}}

	case reflect.Bool:
		return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"boolean"}}}

	case reflect.Slice, reflect.Array:
		return &openapi3.SchemaRef{
			Value: &openapi3.Schema{
				Type:  &openapi3.Types{"array"},
				Items: g.goTypeToSchema(t.Elem()),
			},
		}

	case reflect.Map:
		return &openapi3.SchemaRef{
			Value: &openapi3.Schema{
				Type:                 &openapi3.Types{"object"},
				AdditionalProperties: openapi3.AdditionalProperties{Schema: g.goTypeToSchema(t.Elem())},
			},
		}

	case reflect.Ptr:
		schema := g.goTypeToSchema(t.Elem())
		if schema != nil && schema.Value != nil {
			schema.Value.Nullable = true
		}
		return schema

	case reflect.Struct:
		if t == reflect.TypeOf(time.Time{}) {
			return &openapi3.SchemaRef{
				Value: &openapi3.Schema{Type: &openapi3.Types{"string"}, Format: "date-time"},
			}
		}
		return g.extractSchema(reflect.New(t).Interface())

	default:
		return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"object"}}}
	}
}

// =============================================================================
// Operation Generation
// =============================================================================

func (g *Generator) createListOperation(res ResourceInfo, schemaName string) *openapi3.Operation {
	op := &openapi3.Operation{
		OperationID: "list" + capitalize(res.Name),
		Summary:     "List " + res.Name,
		Tags:        []string{capitalize(res.Name)},
		Responses:   openapi3.NewResponses(),
	}
	op.AddParameter(&openapi3.Parameter{
		Name:        "page",
		In:          "query",
		Description: "Page number or \"last\". Out-of-range values select the nearest page.",
		Schema:      stringSchema(),
	})
	op.AddResponse(http.StatusOK, jsonResponse("OK", componentRef(schemaName+"List")))
	return op
}

func (g *Generator) createGetOperation(res ResourceInfo, schemaName string) *openapi3.Operation {
	op := &openapi3.Operation{
		OperationID: "get" + schemaName,
		Summary:     "Get a " + singularize(res.Name),
		Tags:        []string{capitalize(res.Name)},
		Responses:   openapi3.NewResponses(),
	}
	op.AddResponse(http.StatusOK, jsonResponse("OK", componentRef(schemaName)))
	addErrorResponses(op, false, http.StatusNotFound)
	return op
}

func (g *Generator) createCreateOperation(res ResourceInfo, schemaName, inputName string) *openapi3.Operation {
	op := &openapi3.Operation{
		OperationID: "create" + schemaName,
		Summary:     "Create a " + singularize(res.Name),
		Tags:        []string{capitalize(res.Name)},
		RequestBody: jsonBody(componentRef(inputName)),
		Responses:   openapi3.NewResponses(),
	}
	op.AddResponse(http.StatusCreated, jsonResponse("Created", componentRef(schemaName)))
	addErrorResponses(op, res.AuthRequired, http.StatusBadRequest)
	if res.AuthRequired {
		op.Security = sessionSecurity()
	}
	return op
}

func (g *Generator) createUpdateOperation(res ResourceInfo, schemaName, inputName string) *openapi3.Operation {
	op := &openapi3.Operation{
		OperationID: "update" + schemaName,
		Summary:     "Update a " + singularize(res.Name),
		Tags:        []string{capitalize(res.Name)},
		RequestBody: jsonBody(componentRef(inputName)),
		Responses:   openapi3.NewResponses(),
	}
	op.AddResponse(http.StatusOK, jsonResponse("OK", componentRef(schemaName)))
	addErrorResponses(op, res.AuthRequired, http.StatusBadRequest, http.StatusNotFound)
	if res.AuthRequired {
		op.Security = sessionSecurity()
	}
	return op
}

func (g *Generator) createDeleteOperation(res ResourceInfo, schemaName string) *openapi3.Operation {
	op := &openapi3.Operation{
		OperationID: "delete" + schemaName,
		Summary:     "Delete a " + singularize(res.Name),
		Tags:        []string{capitalize(res.Name)},
		Responses:   openapi3.NewResponses(),
	}
	op.AddResponse(http.StatusNoContent, openapi3.NewResponse().WithDescription("Deleted"))
	addErrorResponses(op, res.AuthRequired, http.StatusNotFound)
	if res.AuthRequired {
		op.Security = sessionSecurity()
	}
	return op
}

// =============================================================================
// Helpers
// =============================================================================

func stringSchema() *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"string"}}}
}

func intSchema() *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"integer"}}}
}

func componentRef(name string) *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Ref: "#/components/schemas/" + name}
}

func pathParam(name string) *openapi3.ParameterRef {
	return &openapi3.ParameterRef{
		Value: &openapi3.Parameter{
			Name:     name,
			In:       "path",
			Required: true,
			Schema:   stringSchema(),
		},
	}
}

func jsonBody(schema *openapi3.SchemaRef) *openapi3.RequestBodyRef {
	return &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().
			WithRequired(true).
			WithContent(openapi3.NewContentWithJSONSchemaRef(schema)),
	}
}

func jsonResponse(description string, schema *openapi3.SchemaRef) *openapi3.Response {
	return openapi3.NewResponse().
		WithDescription(description).
		WithContent(openapi3.NewContentWithJSONSchemaRef(schema))
}

func addErrorResponses(op *openapi3.Operation, authRequired bool, statuses ...int) {
	if authRequired {
		statuses = append(statuses, http.StatusUnauthorized, http.StatusForbidden)
	}
	for _, status := range statuses {
		op.AddResponse(status, jsonResponse(http.StatusText(status), componentRef("Error")))
	}
}

func sessionSecurity() *openapi3.SecurityRequirements {
	return &openapi3.SecurityRequirements{
		openapi3.NewSecurityRequirement().Authenticate("session"),
		openapi3.NewSecurityRequirement().Authenticate("bearer"),
	}
}

// pathParams returns the {name} segments of a chi-style path in order.
func pathParams(path string) []string {
	var names []string
	for _, seg := range strings.Split(path, "/") {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			names = append(names, seg[1:len(seg)-1])
		}
	}
	return names
}

// operationID derives a stable camelCase ID such as "postUsersUsernameFollow".
func operationID(method, path string) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(method))
	for _, seg := range strings.Split(path, "/") {
		seg = strings.Trim(seg, "{}")
		if seg != "" {
			b.WriteString(capitalize(seg))
		}
	}
	return b.String()
}

// Paths returns the registered paths in sorted order.
func (g *Generator) Paths() []string {
	spec := g.Generate()
	paths := make([]string, 0, spec.Paths.Len())
	for path := range spec.Paths.Map() {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// capitalize returns the string with the first letter capitalized.
func capitalize(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// singularize performs basic singularization (removes trailing 's').
func singularize(s string) string {
	if strings.HasSuffix(s, "ies") {
		return s[:len(s)-3] + "y"
	}
	if strings.HasSuffix(s, "s") {
		return s[:len(s)-1]
	}
	return s
}
