// Package phcdkapp composes the seven PhaserAI stacks into a CDK app.
//
// The stack graph is a fixed acyclic order enforced with explicit dependency
// edges:
//
//	Network ─▶ Database ─▶ Migration ─▶ Api ─▶ Web
//	                  Layer ─▶ Migration
//	                   Auth ─▶ Api
package phcdkapp

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/jsii-runtime-go"
	"github.com/phaserai/infra/phcdk/phcdkapi"
	"github.com/phaserai/infra/phcdk/phcdkauth"
	"github.com/phaserai/infra/phcdk/phcdkdb"
	"github.com/phaserai/infra/phcdk/phcdklayer"
	"github.com/phaserai/infra/phcdk/phcdkmigrate"
	"github.com/phaserai/infra/phcdk/phcdknetwork"
	"github.com/phaserai/infra/phcdk/phcdkweb"
	"github.com/phaserai/infra/phcdkutil"
)

// Stacks holds the seven application stacks and their constructs.
type Stacks struct {
	Network   awscdk.Stack
	Database  awscdk.Stack
	Auth      awscdk.Stack
	Layer     awscdk.Stack
	Migration awscdk.Stack
	Api       awscdk.Stack
	Web       awscdk.Stack
}

// SetupApp stores the validated config on the app and creates all seven
// stacks with their dependency edges.
func SetupApp(app awscdk.App, cfg *phcdkutil.Config) *Stacks {
	phcdkutil.StoreConfig(app, cfg)

	stacks := &Stacks{
		Network:   phcdkutil.NewStackFromConfig(app, cfg, "Network"),
		Database:  phcdkutil.NewStackFromConfig(app, cfg, "Database"),
		Auth:      phcdkutil.NewStackFromConfig(app, cfg, "Auth"),
		Layer:     phcdkutil.NewStackFromConfig(app, cfg, "Layer"),
		Migration: phcdkutil.NewStackFromConfig(app, cfg, "Migration"),
		Api:       phcdkutil.NewStackFromConfig(app, cfg, "Api"),
		Web:       phcdkutil.NewStackFromConfig(app, cfg, "Web"),
	}

	network := phcdknetwork.New(stacks.Network, phcdknetwork.Props{})
	database := phcdkdb.New(stacks.Database, phcdkdb.Props{Network: network})
	auth := phcdkauth.New(stacks.Auth, phcdkauth.Props{})
	layer := phcdklayer.New(stacks.Layer, phcdklayer.Props{})
	phcdkmigrate.New(stacks.Migration, phcdkmigrate.Props{
		Network:  network,
		Database: database,
	})
	phcdkapi.New(stacks.Api, phcdkapi.Props{
		Network:  network,
		Database: database,
		Auth:     auth,
		Layer:    layer,
	})
	phcdkweb.New(stacks.Web, phcdkweb.Props{})

	stacks.Database.AddDependency(stacks.Network,
		jsii.String("Database subnets and security groups live in the network stack"))
	stacks.Migration.AddDependency(stacks.Database,
		jsii.String("Migrations need the database instance and its secret"))
	stacks.Migration.AddDependency(stacks.Layer,
		jsii.String("Layer publishing must precede function deploys"))
	stacks.Api.AddDependency(stacks.Database,
		jsii.String("Handlers need the database secret"))
	stacks.Api.AddDependency(stacks.Auth,
		jsii.String("The API authorizer references the user pool"))
	stacks.Api.AddDependency(stacks.Layer,
		jsii.String("The phonology function attaches the dependency layer"))
	stacks.Api.AddDependency(stacks.Migration,
		jsii.String("Schema must be migrated before handlers serve traffic"))
	stacks.Web.AddDependency(stacks.Api,
		jsii.String("The frontend is configured with the API endpoint"))

	return stacks
}
