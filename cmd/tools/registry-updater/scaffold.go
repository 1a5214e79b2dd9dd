// cmd/tools/registry-updater/scaffold.go
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"appetite-workers/pkg/registry"

	"github.com/spf13/cobra"
)

var scaffoldFlags struct {
	id     string
	output string
	force  bool
}

var scaffoldCmd = &cobra.Command{
	Use:   "scaffold",
	Short: "Generate a worker package for a registry activity",
	Long: `scaffold writes config.go, models.go, schema.go and handler.go for an activity
under <output>/<category>/<id>. The handler validates job variables against the
activity's input schema and reports failures through the shared error handler.`,
	Example: "  registry-updater scaffold --id rank-carriers",
	RunE:    runScaffold,
}

func init() {
	f := scaffoldCmd.Flags()
	f.StringVar(&scaffoldFlags.id, "id", "", "Activity ID from the registry (required)")
	f.StringVar(&scaffoldFlags.output, "output", "internal/workers", "Root directory for worker packages")
	f.BoolVar(&scaffoldFlags.force, "force", false, "Overwrite existing files")
	_ = scaffoldCmd.MarkFlagRequired("id")
	rootCmd.AddCommand(scaffoldCmd)
}

// scaffoldField is one generated struct field.
type scaffoldField struct {
	Name    string
	Type    string
	JSONKey string
}

type scaffoldData struct {
	PackageName  string
	TaskType     string
	DisplayName  string
	Description  string
	Timeout      string
	InputFields  []scaffoldField
	OutputFields []scaffoldField
	InputSchema  string
}

func runScaffold(cmd *cobra.Command, _ []string) error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	activity, ok := reg.Find(scaffoldFlags.id)
	if !ok {
		return fmt.Errorf("%w: %s", registry.ErrActivityNotFound, scaffoldFlags.id)
	}

	files, err := renderScaffold(activity)
	if err != nil {
		return err
	}

	dir := filepath.Join(scaffoldFlags.output, activity.Category, activity.ID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	out := cmd.OutOrStdout()
	for _, name := range names {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil && !scaffoldFlags.force {
			fmt.Fprintf(out, "skipped %s (exists)\n", path)
			continue
		}
		if err := os.WriteFile(path, files[name], 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		fmt.Fprintf(out, "generated %s\n", path)
	}
	return nil
}

// renderScaffold returns the gofmt'ed worker files keyed by file name.
func renderScaffold(a *registry.Activity) (map[string][]byte, error) {
	schemaJSON, err := json.MarshalIndent(a.InputSchema, "", "\t")
	if err != nil {
		return nil, fmt.Errorf("marshal input schema: %w", err)
	}
	timeout := a.Timeout
	if timeout == "" {
		timeout = "30s"
	}

	data := scaffoldData{
		PackageName:  strings.ReplaceAll(a.ID, "-", ""),
		TaskType:     a.TaskType,
		DisplayName:  a.DisplayName,
		Description:  a.Description,
		Timeout:      timeout,
		InputFields:  fieldsFromSchema(a.InputSchema),
		OutputFields: fieldsFromSchema(a.OutputSchema),
		InputSchema:  string(schemaJSON),
	}

	files := make(map[string][]byte, len(scaffoldTemplates))
	for name, tmpl := range scaffoldTemplates {
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("render %s: %w", name, err)
		}
		src, err := format.Source(buf.Bytes())
		if err != nil {
			return nil, fmt.Errorf("format %s: %w", name, err)
		}
		files[name] = src
	}
	return files, nil
}

func fieldsFromSchema(schema map[string]interface{}) []scaffoldField {
	props, _ := schema["properties"].(map[string]interface{})
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]scaffoldField, 0, len(keys))
	for _, k := range keys {
		details, _ := props[k].(map[string]interface{})
		fields = append(fields, scaffoldField{
			Name:    goFieldName(k),
			Type:    goType(details["type"]),
			JSONKey: k,
		})
	}
	return fields
}

// goType maps a JSON schema type to a Go type. Nullable unions use the
// first non-null member.
func goType(t interface{}) string {
	name, _ := t.(string)
	if list, ok := t.([]interface{}); ok {
		for _, v := range list {
			if s, _ := v.(string); s != "" && s != "null" {
				name = s
				break
			}
		}
	}
	switch name {
	case "string":
		return "string"
	case "integer":
		return "int"
	case "number":
		return "float64"
	case "boolean":
		return "bool"
	case "object":
		return "map[string]interface{}"
	case "array":
		return "[]interface{}"
	default:
		return "interface{}"
	}
}

// goFieldName converts camelCase or snake_case keys to an exported Go name,
// keeping the Id suffix as ID.
func goFieldName(key string) string {
	parts := strings.FieldsFunc(key, func(r rune) bool { return r == '_' || r == '-' })
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]) + p[1:])
	}
	name := b.String()
	if strings.HasSuffix(name, "Id") {
		name = strings.TrimSuffix(name, "Id") + "ID"
	}
	return name
}

var scaffoldTemplates = map[string]*template.Template{
	"config.go":  template.Must(template.New("config").Parse(configTemplate)),
	"models.go":  template.Must(template.New("models").Parse(modelsTemplate)),
	"schema.go":  template.Must(template.New("schema").Parse(schemaTemplate)),
	"handler.go": template.Must(template.New("handler").Parse(handlerTemplate)),
}

const configTemplate = `package {{ .PackageName }}

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	timeout, _ := time.ParseDuration("{{ .Timeout }}")
	return &Config{
		Timeout: timeout,
	}
}
`

const modelsTemplate = `package {{ .PackageName }}

type Input struct {
{{- range .InputFields }}
	{{ .Name }} {{ .Type }} ` + "`json:\"{{ .JSONKey }}\"`" + `
{{- end }}
}

type Output struct {
{{- range .OutputFields }}
	{{ .Name }} {{ .Type }} ` + "`json:\"{{ .JSONKey }}\"`" + `
{{- end }}
}
`

const schemaTemplate = `package {{ .PackageName }}

import (
	"encoding/json"

	"appetite-workers/internal/common/validation"
)

const inputSchemaJSON = ` + "`" + `{{ .InputSchema }}` + "`" + `

var inputValidator = mustInputValidator()

func mustInputValidator() *validation.Validator {
	var schema map[string]interface{}
	if err := json.Unmarshal([]byte(inputSchemaJSON), &schema); err != nil {
		panic(err)
	}
	return validation.MustCompile(TaskType, schema)
}
`

const handlerTemplate = `package {{ .PackageName }}

import (
	"context"
	"encoding/json"
	"fmt"

	"appetite-workers/internal/common/errors"
	"appetite-workers/internal/common/logger"
	"appetite-workers/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "{{ .TaskType }}"
)

// Handler implements {{ .DisplayName }}.
{{- if .Description }}
// {{ .Description }}.
{{- end }}
type Handler struct {
	config     *Config
	errHandler *errors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	if config.Timeout <= 0 {
		config.Timeout = LoadConfig().Timeout
	}
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		errHandler: errors.NewErrorHandler(scoped),
		logger:     scoped,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	timer := metrics.StartJob(TaskType)

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := ParseInput([]byte(job.Variables))
	if err == nil {
		var output *Output
		output, err = h.execute(ctx, input)
		if err == nil {
			h.completeJob(ctx, client, job, output)
			timer.Done("")
			return
		}
	}

	h.errHandler.HandleJobError(ctx, client, job, err)
	timer.Done(string(errors.Normalize(err).Code))
}

func ParseInput(variables []byte) (*Input, error) {
	result, err := inputValidator.ValidateJSON(variables)
	if err != nil {
		return nil, errors.NewInvalidMatchInputError(fmt.Sprintf("parse input: %v", err))
	}
	if !result.Valid {
		return nil, errors.NewInvalidMatchInputError(result.Error())
	}

	var input Input
	if err := json.Unmarshal(variables, &input); err != nil {
		return nil, errors.NewInvalidMatchInputError(fmt.Sprintf("parse input: %v", err))
	}
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	return nil, errors.NewInternalError(fmt.Errorf("%s is not implemented", TaskType))
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
`
