package agent

import (
	"context"
	"strings"

	"github.com/etnz/irr"
	"github.com/etnz/irr/docs"
	"github.com/etnz/irr/renderer"
	"google.golang.org/genai"
)

func newFacilitator(model string, experts ...*Expert) *Expert {
	return &Expert{
		Name:      "Facilitator",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(experts)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			As a facilitator you are in charge of the conversation and solving the user's request.

			Learn about the expert's skill that you can get from the Tools to ask them questions.
			They are at your service and 100% dedicated to you, they keep context of your previous questions.

			The user wants to understand the return of an investment: its annual rate, what it will be worth,
			how follow-on investments or fees change it.
			Never compute a rate yourself, always ask the Analyst and quote its figures.

			Devise a plan of questions to ask to each experts and come up with the best response to the user's request.
		`}}},
		},
		Library: NewLibrary(experts),
	}
}

// NewResearcher returns the expert grounded on Google Search.
func NewResearcher(model string) *Expert {
	return &Expert{
		Name: "Researcher",
		Description: `This is an expert of financial markets, aware of typical returns, fees and success rates
		of asset classes, funds and early stage investments.
		Ask the Researcher whenever you need recent or grounding information, or realistic assumptions.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are an expert in financial markets, you can search and find about anything related to
			historical returns, fund fees, success rates of early stage investments. You leverage Google Search to
			ground your assertions in a solid truth, and always give your sources.
			`}}},
		},
	}
}

// NewAnalyst returns the expert that runs the calculations.
func NewAnalyst(model string) *Expert {
	lib := []Function{Calculate, Topic}
	return &Expert{
		Name: "Analyst",
		Description: `This is the Analyst. It computes annual rates of return, future and present values,
		blended rates with follow-on investments, and the net rate of unit based portfolios after fees.
		Give it all the figures you know, it tells you what is missing.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
				You are a financial analyst. You never compute a figure yourself: you write scenarios and use
				the Calculate tool, then explain its report.
				Read the documentation with the Topic tool when unsure about a concept or the scenario format.
				When a calculation fails, explain why in plain words and ask for the missing or wrong figure.
			`}}},
		},
		Library: NewLibrary(lib),
	}
}

// Calculate evaluates a scenario and returns its markdown report.
var Calculate = &Func{
	Decl: &genai.FunctionDeclaration{
		Name:        "Calculate",
		Description: `Calculate evaluates a scenario and returns a markdown report with its annual rate, metrics and growth.`,
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"scenario": {
					Type:        genai.TypeString,
					Description: "The scenario as a JSON object:\n\n" + must(docs.GetTopic("scenario")),
				},
				"monthly": {
					Type:        genai.TypeBoolean,
					Description: "List every month of the growth instead of every year.",
				},
			},
			Required: []string{"scenario"},
		},
		Response: &genai.Schema{
			Type:        genai.TypeString,
			Description: "A markdown report of the calculation.",
		},
	},
	Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
		const name = "Calculate"
		src, err := stringArg(args, "scenario")
		if err != nil {
			return failure(id, name, err)
		}
		sc, err := irr.DecodeScenario(strings.NewReader(src))
		if err != nil {
			return failure(id, name, err)
		}
		c, err := irr.Evaluate(sc)
		if err != nil {
			return failure(id, name, err)
		}
		monthly, _ := args["monthly"].(bool)
		return success(id, name, renderer.RenderCalculation(renderer.NewReport(c, renderer.Options{Monthly: monthly})))
	},
}

// Topic returns documentation topics.
var Topic = &Func{
	Decl: &genai.FunctionDeclaration{
		Name:        "Topic",
		Description: "Topic returns a documentation topic. The readme topic lists them all.",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"topic": {
					Type:        genai.TypeString,
					Description: "The topic name, one of: readme, " + strings.Join(must(docs.GetAllTopics()), ", "),
				},
			},
			Required: []string{"topic"},
		},
		Response: &genai.Schema{
			Type:        genai.TypeString,
			Description: "The markdown content of the topic.",
		},
	},
	Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
		const name = "Topic"
		topic, err := stringArg(args, "topic")
		if err != nil {
			return failure(id, name, err)
		}
		content, err := docs.GetTopic(topic)
		if err != nil {
			return failure(id, name, err)
		}
		return success(id, name, content)
	},
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
