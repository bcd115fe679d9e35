package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"github.com/aws/aws-lambda-go/cfn"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/phaserai/infra/phapi"
	"github.com/phaserai/infra/phmigrate"
)

// migrationsResourceID identifies the custom resource across stack updates.
// Keeping it stable prevents CloudFormation from issuing a Delete for the
// previous "resource" after every deploy that changes the migration set.
const migrationsResourceID = "phaserai-migrations"

type handler struct {
	log *zap.Logger
}

// directEvent is the payload for invoking the function by hand, outside of
// a CloudFormation deploy.
type directEvent struct {
	Action string `json:"action"`
}

// dispatch tells CloudFormation custom resource events apart from direct
// invocations. Custom resource events always carry a RequestType.
func (h *handler) dispatch(ctx context.Context, raw json.RawMessage) (any, error) {
	var event cfn.Event
	if err := json.Unmarshal(raw, &event); err == nil && event.RequestType != "" {
		return cfn.LambdaWrap(h.customResource)(ctx, event)
	}

	var direct directEvent
	if err := json.Unmarshal(raw, &direct); err != nil {
		return nil, errors.Wrap(err, "unrecognized event payload")
	}

	runner, db, err := h.newRunner(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	switch direct.Action {
	case "status":
		return runner.Report(ctx)
	case "", "up":
		return runner.Up(ctx)
	default:
		return nil, errors.Newf("unknown action: %q", direct.Action)
	}
}

func (h *handler) customResource(ctx context.Context, event cfn.Event) (string, map[string]any, error) {
	physicalID := event.PhysicalResourceID
	if physicalID == "" {
		physicalID = migrationsResourceID
	}

	// Deleting the stack must not touch the schema. The database keeps its
	// data through a snapshot removal policy.
	if event.RequestType == cfn.RequestDelete {
		h.log.Info("delete request, leaving schema untouched",
			zap.String("physical_id", physicalID))
		return physicalID, nil, nil
	}

	runner, db, err := h.newRunner(ctx)
	if err != nil {
		return physicalID, nil, err
	}
	defer db.Close()

	result, err := runner.Up(ctx)
	if err != nil {
		return physicalID, nil, err
	}

	h.log.Info("migrations applied",
		zap.Int("count", len(result.Applied)),
		zap.Int64("total_ms", result.TotalTimeMS))

	return physicalID, map[string]any{
		"AppliedCount":   fmt.Sprintf("%d", len(result.Applied)),
		"MigrationsHash": phmigrate.SetHash(),
	}, nil
}

func (h *handler) newRunner(ctx context.Context) (*phmigrate.Runner, *sql.DB, error) {
	db, err := phapi.Connect(ctx)
	if err != nil {
		return nil, nil, err
	}

	sugar := h.log.Sugar()
	runner := phmigrate.NewRunner(db, phmigrate.WithLogf(sugar.Infof))
	return runner, db, nil
}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}

	h := &handler{log: logger}
	lambda.Start(h.dispatch)
}
