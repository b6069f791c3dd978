package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/trainengine/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to the search service.
// Object fields resolve through the json tags of the domain types.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	legType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Leg",
		Fields: graphql.Fields{
			"from": &graphql.Field{Type: graphql.String},
			"to":   &graphql.Field{Type: graphql.String},
			"date": &graphql.Field{Type: graphql.String},
		},
	})

	passengersType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Passengers",
		Fields: graphql.Fields{
			"adults":   &graphql.Field{Type: graphql.Int},
			"children": &graphql.Field{Type: graphql.Int},
			"total":    &graphql.Field{Type: graphql.Int},
		},
	})

	parametersType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SearchParameters",
		Fields: graphql.Fields{
			"journeys":  &graphql.Field{Type: graphql.NewList(legType)},
			"passenger": &graphql.Field{Type: passengersType},
			"bonus":     &graphql.Field{Type: graphql.NewList(graphql.String)},
		},
	})

	endpointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Endpoint",
		Fields: graphql.Fields{
			"date":    &graphql.Field{Type: graphql.String, Description: "DD/MM/YYYY"},
			"time":    &graphql.Field{Type: graphql.String, Description: "HH:mm"},
			"station": &graphql.Field{Type: graphql.String},
		},
	})

	durationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Duration",
		Fields: graphql.Fields{
			"hours":   &graphql.Field{Type: graphql.Int},
			"minutes": &graphql.Field{Type: graphql.Int},
		},
	})

	journeyType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Journey",
		Fields: graphql.Fields{
			"departure": &graphql.Field{Type: endpointType},
			"arrival":   &graphql.Field{Type: endpointType},
			"duration":  &graphql.Field{Type: durationType},
		},
	})

	priceType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Price",
		Fields: graphql.Fields{
			"total": &graphql.Field{Type: graphql.Float},
			"breakdown": &graphql.Field{Type: graphql.NewObject(graphql.ObjectConfig{
				Name: "PriceBreakdown",
				Fields: graphql.Fields{
					"adult":    &graphql.Field{Type: graphql.Float},
					"children": &graphql.Field{Type: graphql.Float},
				},
			})},
		},
	})

	optionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Option",
		Fields: graphql.Fields{
			"accommodation": &graphql.Field{Type: graphql.NewObject(graphql.ObjectConfig{
				Name: "OptionAccommodation",
				Fields: graphql.Fields{
					"type": &graphql.Field{Type: graphql.String},
					"passengers": &graphql.Field{Type: graphql.NewObject(graphql.ObjectConfig{
						Name: "OptionPassengers",
						Fields: graphql.Fields{
							"adults":   &graphql.Field{Type: graphql.String},
							"children": &graphql.Field{Type: graphql.String},
						},
					})},
				},
			})},
			"price": &graphql.Field{Type: priceType},
		},
	})

	trainType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Train",
		Fields: graphql.Fields{
			"type":     &graphql.Field{Type: graphql.String, Description: "oneway, roundtrip or multidestination"},
			"journeys": &graphql.Field{Type: graphql.NewList(journeyType)},
			"options":  &graphql.Field{Type: graphql.NewList(optionType)},
		},
	})

	offerType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Offer",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.String},
			"searchId":   &graphql.Field{Type: graphql.String},
			"parameters": &graphql.Field{Type: parametersType},
			"train":      &graphql.Field{Type: trainType},
			"createdAt":  &graphql.Field{Type: graphql.DateTime},
		},
	})

	outcomeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SearchOutcome",
		Fields: graphql.Fields{
			"searchId":      &graphql.Field{Type: graphql.String},
			"type":          &graphql.Field{Type: graphql.String},
			"offers":        &graphql.Field{Type: graphql.Int},
			"stationErrors": &graphql.Field{Type: graphql.Int},
			"availability":  &graphql.Field{Type: graphql.String},
		},
	})

	legInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "LegInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"from": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"to":   &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"date": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	passengersInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "PassengersInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"adults":   &graphql.InputObjectFieldConfig{Type: graphql.Int, DefaultValue: 0},
			"children": &graphql.InputObjectFieldConfig{Type: graphql.Int, DefaultValue: 0},
			"total":    &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Int)},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"searchResults": &graphql.Field{
				Type:        graphql.NewList(offerType),
				Description: "Offers stored for a search, in insertion order",
				Args: graphql.FieldConfigArgument{
					"searchId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["searchId"].(string)
					offers, err := deps.Search.Results(p.Context, id)
					if err != nil {
						return nil, resolverError(p.Context, deps, err)
					}
					return offers, nil
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"search": &graphql.Field{
				Type:        outcomeType,
				Description: "Run a search and store its offers as a new batch",
				Args: graphql.FieldConfigArgument{
					"journeys":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(legInput)))},
					"passenger": &graphql.ArgumentConfig{Type: graphql.NewNonNull(passengersInput)},
					"bonus":     &graphql.ArgumentConfig{Type: graphql.NewList(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					req, err := searchRequestFromArgs(p.Args)
					if err != nil {
						return nil, err
					}
					out, err := deps.Search.Search(p.Context, req)
					if err != nil {
						return nil, resolverError(p.Context, deps, err)
					}
					return out, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

// searchRequestFromArgs maps GraphQL arguments onto a SearchRequest using
// the request's json tags.
func searchRequestFromArgs(args map[string]interface{}) (domain.SearchRequest, error) {
	var req domain.SearchRequest
	raw, err := json.Marshal(args)
	if err != nil {
		return req, fmt.Errorf("encode arguments: %w", err)
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return req, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return req, nil
}

// resolverError applies the REST error mapping to GraphQL: validation
// problems pass through, anything else is logged and replaced by the
// generic message outside development.
func resolverError(ctx context.Context, deps *Dependencies, err error) error {
	if errors.Is(err, domain.ErrValidation) {
		return err
	}
	LoggerFromCtx(ctx).Error("graphql resolver failed", "error", err)
	return errors.New(internalMessage(deps, err))
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return newError(c, fiber.StatusBadRequest, "Bad Request", "invalid request body", nil)
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
