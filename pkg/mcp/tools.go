package mcp

import (
	"context"
	"encoding/json"

	"github.com/invopop/jsonschema"
	"github.com/jingkaihe/skillmcp/pkg/logger"
	"github.com/jingkaihe/skillmcp/pkg/skills"
	"github.com/jingkaihe/skillmcp/pkg/telemetry"
	gomcp "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// Tool names exposed to MCP clients
const (
	ToolGetAvailableSkills  = "get_available_skills"
	ToolGetSkillDetails     = "get_skill_details"
	ToolGetSkillRelatedFile = "get_skill_related_file"
)

// SkillDetailsInput defines the arguments of get_skill_details
type SkillDetailsInput struct {
	SkillName  string `json:"skill_name" mapstructure:"skill_name" jsonschema:"description=The name of the skill (from get_available_skills)"`
	ReturnType string `json:"return_type,omitempty" mapstructure:"return_type" jsonschema:"enum=content,enum=file_path,enum=both,default=both,description=Return the SKILL.md content or its absolute path or both"`
}

// SkillFileInput defines the arguments of get_skill_related_file
type SkillFileInput struct {
	SkillName    string `json:"skill_name" mapstructure:"skill_name" jsonschema:"description=The name of the skill"`
	RelativePath string `json:"relative_path" mapstructure:"relative_path" jsonschema:"description=Path to the file relative to the skill directory (e.g. scripts/run.py)"`
	ReturnType   string `json:"return_type,omitempty" mapstructure:"return_type" jsonschema:"enum=content,enum=file_path,enum=both,default=both,description=Return the file content or its absolute path or both"`
}

// SkillDetails is the result of get_skill_details
type SkillDetails struct {
	SkillContent *skills.Document `json:"skill_content"`
	Files        []string         `json:"files"`
}

// GenerateSchema generates the JSON schema for a tool input struct
func GenerateSchema[T any]() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		Anonymous:                 true,
	}
	var v T

	schema := reflector.Reflect(v)
	schema.Version = ""
	return schema
}

func rawSchema[T any]() json.RawMessage {
	b, err := json.Marshal(GenerateSchema[T]())
	if err != nil {
		// the input structs are static, a failure here is a programming error
		panic(errors.Wrap(err, "failed to marshal tool schema"))
	}
	return b
}

// SkillTools serves the skill registry as MCP tools
type SkillTools struct {
	registry *skills.Registry
}

// NewSkillTools creates the tool handlers for a registry
func NewSkillTools(registry *skills.Registry) *SkillTools {
	return &SkillTools{registry: registry}
}

// Register adds every skill tool to the MCP server
func (t *SkillTools) Register(s *mcpserver.MCPServer) {
	s.AddTool(gomcp.NewTool(ToolGetAvailableSkills,
		gomcp.WithDescription(`Get an overview of all available skills.

Returns the name, description and directory path of every skill, parsed from the YAML frontmatter of each SKILL.md file. Use this first to discover which skills exist before requesting details.`),
	), t.instrument(ToolGetAvailableSkills, t.getAvailableSkills))

	s.AddTool(gomcp.NewToolWithRawSchema(ToolGetSkillDetails,
		`Get detailed information about a specific skill.

Returns the SKILL.md content (shaped by return_type) and a sorted list of all files in the skill directory, relative to it. Use get_skill_related_file to read any of those files.`,
		rawSchema[SkillDetailsInput](),
	), t.instrument(ToolGetSkillDetails, t.getSkillDetails))

	s.AddTool(gomcp.NewToolWithRawSchema(ToolGetSkillRelatedFile,
		`Read a file within a skill directory.

The path is relative to the directory containing the skill's SKILL.md. Paths that resolve outside the skill directory are rejected. Use get_skill_details first to see the available files.`,
		rawSchema[SkillFileInput](),
	), t.instrument(ToolGetSkillRelatedFile, t.getSkillRelatedFile))
}

// instrument wraps a handler with a span and a request scoped logger
func (t *SkillTools) instrument(name string, handler mcpserver.ToolHandlerFunc) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
		ctx = logger.WithFields(ctx, logrus.Fields{"tool": name})

		var result *gomcp.CallToolResult
		err := telemetry.WithSpan(ctx, "mcp.tool."+name, func(ctx context.Context) error {
			var err error
			result, err = handler(ctx, request)
			if err == nil && result != nil && result.IsError {
				telemetry.SetAttributes(ctx, attribute.Bool("tool.is_error", true))
			}
			return err
		}, attribute.String("tool.name", name))
		if err != nil {
			logger.G(ctx).WithError(err).Error("tool call failed")
			return nil, err
		}

		logger.G(ctx).WithField("is_error", result.IsError).Debug("tool call completed")
		return result, nil
	}
}

func decodeArguments(request gomcp.CallToolRequest, out any) error {
	if err := mapstructure.Decode(request.Params.Arguments, out); err != nil {
		return errors.Wrap(err, "invalid arguments")
	}
	return nil
}

func jsonResult(v any) (*gomcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode tool result")
	}
	return gomcp.NewToolResultText(string(b)), nil
}

func (t *SkillTools) getAvailableSkills(ctx context.Context, _ gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	discovered := t.registry.Discover(ctx)
	if discovered == nil {
		discovered = []*skills.Skill{}
	}
	telemetry.SetAttributes(ctx, attribute.Int("skills.count", len(discovered)))
	return jsonResult(discovered)
}

func (t *SkillTools) getSkillDetails(ctx context.Context, request gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var input SkillDetailsInput
	if err := decodeArguments(request, &input); err != nil {
		return gomcp.NewToolResultError("Error getting skill details: " + err.Error()), nil
	}
	telemetry.SetAttributes(ctx, attribute.String("skill_name", input.SkillName))

	details, err := t.skillDetails(ctx, input)
	if err != nil {
		return gomcp.NewToolResultError("Error getting skill details: " + err.Error()), nil
	}
	return jsonResult(details)
}

func (t *SkillTools) skillDetails(ctx context.Context, input SkillDetailsInput) (*SkillDetails, error) {
	if input.SkillName == "" {
		return nil, errors.New("skill_name is required")
	}
	rt, err := skills.ParseReturnType(input.ReturnType)
	if err != nil {
		return nil, err
	}

	doc, err := t.registry.GetSkillContent(ctx, input.SkillName, rt)
	if err != nil {
		return nil, err
	}
	files, err := t.registry.ListFiles(ctx, input.SkillName, true)
	if err != nil {
		return nil, err
	}

	return &SkillDetails{SkillContent: doc, Files: files}, nil
}

func (t *SkillTools) getSkillRelatedFile(ctx context.Context, request gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var input SkillFileInput
	if err := decodeArguments(request, &input); err != nil {
		return gomcp.NewToolResultError("Error reading skill file: " + err.Error()), nil
	}
	telemetry.SetAttributes(ctx,
		attribute.String("skill_name", input.SkillName),
		attribute.String("relative_path", input.RelativePath),
	)

	doc, err := t.skillFile(ctx, input)
	if err != nil {
		return gomcp.NewToolResultError("Error reading skill file: " + err.Error()), nil
	}
	if doc.ReturnType == skills.ReturnBoth {
		return jsonResult(doc)
	}
	return gomcp.NewToolResultText(doc.String()), nil
}

func (t *SkillTools) skillFile(ctx context.Context, input SkillFileInput) (*skills.Document, error) {
	if input.SkillName == "" {
		return nil, errors.New("skill_name is required")
	}
	if input.RelativePath == "" {
		return nil, errors.New("relative_path is required")
	}
	rt, err := skills.ParseReturnType(input.ReturnType)
	if err != nil {
		return nil, err
	}
	return t.registry.GetFile(ctx, input.SkillName, input.RelativePath, rt)
}
