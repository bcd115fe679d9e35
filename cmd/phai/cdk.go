package main

import (
	"context"
	"encoding/json"
	"maps"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/iancoleman/strcase"
	"github.com/urfave/cli/v3"

	"github.com/phaserai/infra/cmd/phai/internal/cmdexec"
	"github.com/phaserai/infra/cmd/phai/internal/config"
)

func cdkCmd() *cli.Command {
	return &cli.Command{
		Name:  "cdk",
		Usage: "Deploy and manage the CDK stacks",
		Commands: []*cli.Command{
			bootstrapCmd(),
			deployCmd(),
			diffCmd(),
			destroyCmd(),
		},
	}
}

// cdkProject is the resolved CDK configuration of the project: the merged
// context, the detected prefix/qualifier, and an executor rooted at the
// project directory.
type cdkProject struct {
	Prefix    string
	Qualifier string
	Profile   string
	Context   map[string]any
	Exec      cmdexec.Executor
}

func loadCDKProject(cfg config.Config) (cdkProject, error) {
	cdkContext, err := getCDKContext(cfg)
	if err != nil {
		return cdkProject{}, err
	}

	prefix, err := detectPrefix(cdkContext)
	if err != nil {
		return cdkProject{}, err
	}

	qualifier, ok := cdkContext[prefix+"qualifier"].(string)
	if !ok || qualifier == "" {
		return cdkProject{}, errors.Errorf("qualifier not found at context key %q", prefix+"qualifier")
	}

	profile, _ := cdkContext["profile"].(string)

	return cdkProject{
		Prefix:    prefix,
		Qualifier: qualifier,
		Profile:   profile,
		Context:   cdkContext,
		Exec:      cmdexec.New(cfg),
	}, nil
}

// getCDKContext merges cdk.json (including its nested context object) with
// cdk.context.json. Later sources win.
func getCDKContext(cfg config.Config) (map[string]any, error) {
	result := make(map[string]any)

	cdkJSONData, err := os.ReadFile(cfg.CDKJSONPath())
	if err != nil {
		return nil, errors.Wrap(err, "failed to read cdk.json")
	}
	var cdkJSON map[string]any
	if err := json.Unmarshal(cdkJSONData, &cdkJSON); err != nil {
		return nil, errors.Wrap(err, "failed to parse cdk.json")
	}
	maps.Copy(result, cdkJSON)
	if nested, ok := cdkJSON["context"].(map[string]any); ok {
		maps.Copy(result, nested)
	}

	cdkContextData, err := os.ReadFile(cfg.CDKContextPath())
	if err != nil {
		if os.IsNotExist(err) {
			return result, nil
		}
		return nil, errors.Wrap(err, "failed to read cdk.context.json")
	}
	var cdkContextJSON map[string]any
	if err := json.Unmarshal(cdkContextData, &cdkContextJSON); err != nil {
		return nil, errors.Wrap(err, "failed to parse cdk.context.json")
	}
	maps.Copy(result, cdkContextJSON)

	return result, nil
}

func detectPrefix(context map[string]any) (string, error) {
	for key := range context {
		if idx := len(key) - len("qualifier"); idx > 0 && key[idx:] == "qualifier" {
			return key[:idx], nil
		}
	}
	return "", errors.New("could not detect context prefix - no key ending with 'qualifier' found")
}

func toolkitStackName(qualifier string) string {
	return qualifier + "Bootstrap"
}

// stackSelectionArgs turns a stack ident like "Api" into the synthesized
// stack name. No ident selects every stack.
func stackSelectionArgs(p cdkProject, ident string, all bool) []string {
	if all || ident == "" {
		return []string{"--all"}
	}
	return []string{strcase.ToLowerCamel(p.Qualifier) + ident}
}

func profileArgs(p cdkProject) []string {
	if p.Profile == "" {
		return nil
	}
	return []string{"--profile", p.Profile}
}

func runCDKCommand(ctx context.Context, exec cmdexec.Executor, verb string, args []string) error {
	cdkArgs := append([]string{verb}, args...)
	return exec.Run(ctx, "cdk", cdkArgs...)
}
