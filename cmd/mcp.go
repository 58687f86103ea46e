package cmd

import (
	"context"
	"fmt"
	"strings"

	"charon/internal/outline"
	"charon/internal/outline/languages"
	"charon/internal/resolver"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start an MCP server exposing folder lookup tools over stdio",
	Args:  cobra.NoArgs,
	RunE:  runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

// toolDeps is what the MCP handlers share.
type toolDeps struct {
	root     string
	resolver *resolver.Resolver
	outliner *outline.Outliner
	// record is called after every resolution. May be nil.
	record func(query string, res resolver.Result)
}

func runMCP(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	deps := toolDeps{
		root:     a.root(),
		resolver: a.resolver,
		outliner: outline.New(languages.Default()),
		record:   func(q string, res resolver.Result) { a.record("mcp", q, res) },
	}

	s := mcpserver.NewMCPServer("charon", "1.0.0", mcpserver.WithToolCapabilities(false))
	s.AddTool(findFolderTool(), deps.findFolderHandler)
	s.AddTool(listSourceFilesTool(), deps.listSourceFilesHandler)
	s.AddTool(getFolderTreeTool(), deps.folderTreeHandler)
	s.AddTool(getProjectOutlineTool(), deps.projectOutlineHandler)

	a.log.Info().Str("root", deps.root).Msg("serving MCP over stdio")
	return mcpserver.ServeStdio(s)
}

// --- Tool schema builders ---

var readOnlyAnnotation = mcp.ToolAnnotation{
	ReadOnlyHint:    mcp.ToBoolPtr(true),
	DestructiveHint: mcp.ToBoolPtr(false),
	IdempotentHint:  mcp.ToBoolPtr(true),
	OpenWorldHint:   mcp.ToBoolPtr(false),
}

func folderNameArg() mcp.ToolOption {
	return mcp.WithString("folder_name",
		mcp.Required(),
		mcp.Description("Name of the project and folder to find; free text, matched word by word against folder names"),
	)
}

func findFolderTool() mcp.Tool {
	return mcp.NewTool("find_folder_from_name",
		mcp.WithDescription("Find a project folder by name under the configured root directory. Returns JSON with success, project_name, folder_path, files (source files), tree_structure and message."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		folderNameArg(),
	)
}

func listSourceFilesTool() mcp.Tool {
	return mcp.NewTool("list_source_files",
		mcp.WithDescription("List the source files of the project folder best matching a name, one absolute path per line."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		folderNameArg(),
	)
}

func getFolderTreeTool() mcp.Tool {
	return mcp.NewTool("get_folder_tree",
		mcp.WithDescription("Get the directory tree of the project folder best matching a name."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		folderNameArg(),
	)
}

func getProjectOutlineTool() mcp.Tool {
	return mcp.NewTool("get_project_outline",
		mcp.WithDescription("Get the classes, functions and methods defined in each source file of the project folder best matching a name, with line ranges."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		folderNameArg(),
	)
}

// --- Handlers ---

// resolve runs one lookup for a tool call. A nil result means res is
// usable; otherwise it is the tool error to return.
func (d toolDeps) resolve(ctx context.Context, req mcp.CallToolRequest) (resolver.Result, *mcp.CallToolResult) {
	name := strings.TrimSpace(req.GetString("folder_name", ""))
	if name == "" {
		return resolver.Result{}, mcp.NewToolResultError("folder_name is required")
	}
	res := d.resolver.ResolveFolder(ctx, d.root, name)
	if d.record != nil {
		d.record(name, res)
	}
	return res, nil
}

func (d toolDeps) findFolderHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, errResult := d.resolve(ctx, req)
	if errResult != nil {
		return errResult, nil
	}
	// Failed lookups are still a well-formed payload with success=false.
	var sb strings.Builder
	if err := writeJSON(&sb, res); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (d toolDeps) listSourceFilesHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, errResult := d.resolve(ctx, req)
	if errResult != nil {
		return errResult, nil
	}
	if !res.Success {
		return mcp.NewToolResultError(res.Message), nil
	}
	if len(res.Files) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No source files in %s", res.FolderPath)), nil
	}
	return mcp.NewToolResultText(strings.Join(res.Files, "\n")), nil
}

func (d toolDeps) folderTreeHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, errResult := d.resolve(ctx, req)
	if errResult != nil {
		return errResult, nil
	}
	if !res.Success {
		return mcp.NewToolResultError(res.Message), nil
	}
	if res.TreeStructure == "" {
		return mcp.NewToolResultText(fmt.Sprintf("No tree available for %s", res.FolderPath)), nil
	}
	return mcp.NewToolResultText(res.TreeStructure), nil
}

func (d toolDeps) projectOutlineHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, errResult := d.resolve(ctx, req)
	if errResult != nil {
		return errResult, nil
	}
	if !res.Success {
		return mcp.NewToolResultError(res.Message), nil
	}

	body := outline.Markdown(d.outliner.Project(ctx, res.Files, 0), res.FolderPath)
	if body == "" {
		body = "(no definitions found)\n"
	}
	return mcp.NewToolResultText(fmt.Sprintf("## Outline of %s\n\n%s", res.ProjectName, body)), nil
}
