// Package phcdkutil provides shared plumbing for the PhaserAI CDK app:
// upfront-validated configuration read from CDK context, stack construction
// with consistent naming, and the app setup that wires the seven application
// stacks together with explicit dependency edges.
package phcdkutil
