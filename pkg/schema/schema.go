// Package schema implements the JSON boundary contract for transport layers
// that expose the optimizer. It decodes and validates request bodies, encodes
// plans, and maps the typed optimizer failures to structured error payloads,
// leaving the transport itself to the caller.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/agroplan/agroplan/internal/optimizer"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Request is the JSON request body for an optimization call.
type Request struct {
	FieldAcres           float64            `json:"field_acres" validate:"required,gt=0"`
	NutrientRequirements map[string]float64 `json:"nutrient_requirements" validate:"required,min=1,dive,gte=0"`
	YieldGoalBuAcre      *float64           `json:"yield_goal_bu_acre,omitempty" validate:"omitempty,gt=0"`
	AvailableFertilizers []FertilizerInput  `json:"available_fertilizers" validate:"required,min=1,dive"`
	BudgetPerAcre        *float64           `json:"budget_per_acre,omitempty" validate:"omitempty,gte=0"`
	CropPricePerBu       *float64           `json:"crop_price_per_bu,omitempty" validate:"omitempty,gte=0"`
}

// FertilizerInput is one catalog entry in a request.
type FertilizerInput struct {
	Name        string             `json:"name" validate:"required"`
	PricePerTon float64            `json:"price_per_ton" validate:"gte=0"`
	Nutrients   map[string]float64 `json:"nutrients" validate:"required,min=1,dive,gte=0,lte=100"`
}

// Response is the JSON response body for a successful optimization.
type Response struct {
	Recommendations []Recommendation `json:"recommendations"`
	TotalCost       float64          `json:"total_cost"`
	ExpectedYield   float64          `json:"expected_yield"`
	ROI             *float64         `json:"roi"`
}

// Recommendation is one product selection in a response.
type Recommendation struct {
	FertilizerName  string  `json:"fertilizer_name"`
	ApplicationRate float64 `json:"application_rate"`
	Cost            float64 `json:"cost"`
}

// Error classes carried in failure payloads. The first three are expected
// business outcomes and should map to client errors at the transport layer.
const (
	ErrorClassInvalidInput = "invalid_input"
	ErrorClassInfeasible   = "infeasible_requirements"
	ErrorClassBudget       = "budget_exceeded"
	ErrorClassInternal     = "internal"
)

// ErrorPayload is the JSON failure body.
type ErrorPayload struct {
	Class          string   `json:"error"`
	Message        string   `json:"message"`
	UnmetNutrients []string `json:"unmet_nutrients,omitempty"`
	MinCostPerAcre *float64 `json:"min_cost_per_acre,omitempty"`
}

// DecodeRequest parses and validates a JSON request body. Malformed or
// invalid bodies come back as *optimizer.InvalidInputError so the caller has
// a single failure taxonomy.
func DecodeRequest(data []byte) (*Request, error) {
	var request Request
	if err := json.Unmarshal(data, &request); err != nil {
		return nil, &optimizer.InvalidInputError{Reason: fmt.Sprintf("malformed request body: %v", err)}
	}

	if err := validate.Struct(&request); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			fields := make([]string, 0, len(validationErrors))
			for _, fieldError := range validationErrors {
				fields = append(fields, strings.ToLower(fieldError.Field()))
			}
			return nil, &optimizer.InvalidInputError{Reason: "invalid fields: " + strings.Join(fields, ", ")}
		}
		return nil, &optimizer.InvalidInputError{Reason: "invalid request"}
	}

	return &request, nil
}

// OptimizerInputs converts a decoded request into optimizer arguments.
func (r *Request) OptimizerInputs() (optimizer.Requirements, []optimizer.Product, optimizer.Constraints) {
	requirements := make(optimizer.Requirements, len(r.NutrientRequirements))
	for code, amount := range r.NutrientRequirements {
		requirements[code] = amount
	}

	products := make([]optimizer.Product, 0, len(r.AvailableFertilizers))
	for _, fertilizer := range r.AvailableFertilizers {
		nutrients := make(map[string]float64, len(fertilizer.Nutrients))
		for code, content := range fertilizer.Nutrients {
			nutrients[code] = content
		}
		products = append(products, optimizer.Product{
			Name:        fertilizer.Name,
			PricePerTon: fertilizer.PricePerTon,
			Nutrients:   nutrients,
		})
	}

	cons := optimizer.Constraints{
		FieldAcres:    r.FieldAcres,
		BudgetPerAcre: r.BudgetPerAcre,
		YieldGoal:     r.YieldGoalBuAcre,
		CropPrice:     r.CropPricePerBu,
	}

	return requirements, products, cons
}

// EncodeResponse converts a plan into the response schema.
func EncodeResponse(plan *optimizer.Plan) Response {
	recommendations := make([]Recommendation, 0, len(plan.Items))
	for _, item := range plan.Items {
		recommendations = append(recommendations, Recommendation{
			FertilizerName:  item.ProductName,
			ApplicationRate: item.RatePerAcre,
			Cost:            item.CostPerAcre,
		})
	}
	return Response{
		Recommendations: recommendations,
		TotalCost:       plan.TotalCost,
		ExpectedYield:   plan.ExpectedYield,
		ROI:             plan.ROI,
	}
}

// MapError converts an optimizer failure into a structured payload.
func MapError(err error) ErrorPayload {
	var invalid *optimizer.InvalidInputError
	if errors.As(err, &invalid) {
		return ErrorPayload{Class: ErrorClassInvalidInput, Message: invalid.Error()}
	}

	var infeasible *optimizer.InfeasibleError
	if errors.As(err, &infeasible) {
		return ErrorPayload{
			Class:          ErrorClassInfeasible,
			Message:        infeasible.Error(),
			UnmetNutrients: infeasible.Nutrients,
		}
	}

	var exceeded *optimizer.BudgetExceededError
	if errors.As(err, &exceeded) {
		minCost := exceeded.MinCostPerAcre
		return ErrorPayload{
			Class:          ErrorClassBudget,
			Message:        exceeded.Error(),
			MinCostPerAcre: &minCost,
		}
	}

	return ErrorPayload{Class: ErrorClassInternal, Message: err.Error()}
}

// ClientError reports whether the error is an expected business outcome that
// a transport layer should render as a client error rather than a fault.
func ClientError(err error) bool {
	payload := MapError(err)
	return payload.Class != ErrorClassInternal
}
