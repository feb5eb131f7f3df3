package mcp

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"stroke-mcs/internal/scenario"
)

type EvaluateArgs struct {
	Scenario      scenario.File `json:"scenario"`
	ThresholdICER float64       `json:"threshold_icer,omitempty" jsonschema:"willingness to pay per QALY in USD; defaults to the server configuration"`
	CostYear      int           `json:"cost_year,omitempty" jsonschema:"year to express costs in; defaults to the server configuration"`
}

type SimulateArgs struct {
	Scenario        scenario.File `json:"scenario"`
	Simulations     int           `json:"simulations,omitempty" jsonschema:"number of Monte Carlo runs"`
	Seed            uint64        `json:"seed,omitempty" jsonschema:"fixed seed for a reproducible batch"`
	TimeUncertainty *bool         `json:"time_uncertainty,omitempty" jsonschema:"sample door-to-treatment delays between their quartiles"`
	LVOUncertainty  *bool         `json:"lvo_uncertainty,omitempty" jsonschema:"sample the probability of a large vessel occlusion"`
	ThresholdICER   float64       `json:"threshold_icer,omitempty" jsonschema:"willingness to pay per QALY in USD; defaults to the server configuration"`
	CostYear        int           `json:"cost_year,omitempty" jsonschema:"year to express costs in; defaults to the server configuration"`
}

type DescribeArgs struct {
	Scenario scenario.File `json:"scenario"`
}

type GenerateArgs struct {
	Seed       uint64 `json:"seed,omitempty" jsonschema:"seed for the generator; random when omitted"`
	Nontrivial bool   `json:"nontrivial,omitempty" jsonschema:"only return patients within reach of a treatment window"`
}

type SchemaArgs struct{}

func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name: "evaluate_routing",
		Description: "Decide where to route a suspected stroke patient using median door-to-treatment times. " +
			"Returns the lifetime cost and QALYs of every feasible strategy (primary center, comprehensive center, drip and ship), " +
			"the cost-effective optimum at the willingness-to-pay threshold and the strategy with the largest QALY gain.\n\n" +
			"Guidance: Use 'simulate_routing' when the decision is close; a single deterministic pass hides parameter uncertainty.",
	}, func(ctx context.Context, req *sdk.CallToolRequest, args EvaluateArgs) (*sdk.CallToolResult, any, error) {
		return s.textResult(s.handleEvaluateRouting(args))
	})

	sdk.AddTool(s.server, &sdk.Tool{
		Name: "simulate_routing",
		Description: "Run a Monte Carlo simulation of the routing decision, sampling door-to-treatment delays and the probability of a large vessel occlusion. " +
			"Returns how often each strategy was optimal, how often it gave the most QALYs, and QALY/cost spreads.\n\n" +
			"STRICT GUARDRAIL: The shares are decision frequencies under uncertainty, NOT clinical probabilities of outcome. " +
			"Do not present them as the chance a patient recovers.",
	}, func(ctx context.Context, req *sdk.CallToolRequest, args SimulateArgs) (*sdk.CallToolResult, any, error) {
		return s.textResult(s.handleSimulateRouting(ctx, req, args))
	})

	sdk.AddTool(s.server, &sdk.Tool{
		Name: "describe_scenario",
		Description: "Validate a scenario and list its candidate strategies, nearest centers, NIHSS and P(LVO) without running the cost-effectiveness model. " +
			"Guidance: Call this first when building a scenario by hand.",
	}, func(ctx context.Context, req *sdk.CallToolRequest, args DescribeArgs) (*sdk.CallToolResult, any, error) {
		return s.textResult(s.handleDescribeScenario(args))
	})

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "generate_scenario",
		Description: "Generate a random scenario with several primary centers and one comprehensive center, useful as a template or for exploration.",
	}, func(ctx context.Context, req *sdk.CallToolRequest, args GenerateArgs) (*sdk.CallToolResult, any, error) {
		return s.textResult(s.handleGenerateScenario(args))
	})

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "get_scenario_schema",
		Description: "Return the JSON Schema every 'scenario' argument is validated against.",
	}, func(ctx context.Context, req *sdk.CallToolRequest, args SchemaArgs) (*sdk.CallToolResult, any, error) {
		return s.textResult(s.handleGetScenarioSchema())
	})
}
