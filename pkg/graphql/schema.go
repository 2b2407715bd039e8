// Package graphql exposes the fake background over GraphQL. Every request
// sees the background through the View built from its own query string, so
// ?filterError=true makes parseFilters fail here just as it does over REST.
package graphql

import (
	"context"
	"errors"
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/shashiranjanraj/bgfixture/pkg/background"
	"github.com/shashiranjanraj/bgfixture/pkg/filters"
	"github.com/shashiranjanraj/bgfixture/pkg/logger"
	"github.com/shashiranjanraj/bgfixture/pkg/validate"
)

type viewKey struct{}

// WithView attaches v to ctx for the resolvers.
func WithView(ctx context.Context, v *background.View) context.Context {
	return context.WithValue(ctx, viewKey{}, v)
}

func viewFrom(p graphql.ResolveParams) (*background.View, error) {
	v, ok := p.Context.Value(viewKey{}).(*background.View)
	if !ok || v == nil {
		return nil, errors.New("graphql: no background view in context")
	}
	return v, nil
}

var filterType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Filter",
	Fields: graphql.Fields{
		"text":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"type":     &graphql.Field{Type: graphql.String},
		"disabled": &graphql.Field{Type: graphql.Boolean},
	},
})

var subscriptionType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Subscription",
	Fields: graphql.Fields{
		"url":          &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"title":        &graphql.Field{Type: graphql.String},
		"disabled":     &graphql.Field{Type: graphql.Boolean},
		"lastDownload": &graphql.Field{Type: graphql.Int},
		"special":      &graphql.Field{Type: graphql.Boolean},
		"filters":      &graphql.Field{Type: graphql.NewList(filterType)},
	},
})

var infoType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Info",
	Fields: graphql.Fields{
		"platform":           &graphql.Field{Type: graphql.String},
		"platformVersion":    &graphql.Field{Type: graphql.String},
		"application":        &graphql.Field{Type: graphql.String},
		"applicationVersion": &graphql.Field{Type: graphql.String},
		"addonName":          &graphql.Field{Type: graphql.String},
		"addonVersion":       &graphql.Field{Type: graphql.String},
	},
})

var paramsType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Params",
	Fields: graphql.Fields{
		"blockedURLs":              &graphql.Field{Type: graphql.String},
		"seenDataCorruption":       &graphql.Field{Type: graphql.Boolean},
		"filterlistsReinitialized": &graphql.Field{Type: graphql.Boolean},
		"addSubscription":          &graphql.Field{Type: graphql.Boolean},
		"filterError":              &graphql.Field{Type: graphql.Boolean},
	},
})

var parseResultType = graphql.NewObject(graphql.ObjectConfig{
	Name: "ParseResult",
	Fields: graphql.Fields{
		"filters": &graphql.Field{Type: graphql.NewList(filterType)},
		"errors":  &graphql.Field{Type: graphql.NewList(graphql.String)},
	},
})

func stringArg(p graphql.ResolveParams, name string) string {
	s, _ := p.Args[name].(string)
	return s
}

func queryType() *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"subscriptions": &graphql.Field{
				Type: graphql.NewList(subscriptionType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					v, err := viewFrom(p)
					if err != nil {
						return nil, err
					}
					return v.Storage.Subscriptions(), nil
				},
			},
			"filters": &graphql.Field{
				Type: graphql.NewList(filterType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					v, err := viewFrom(p)
					if err != nil {
						return nil, err
					}
					return v.Storage.Filters(), nil
				},
			},
			"info": &graphql.Field{
				Type: infoType,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					v, err := viewFrom(p)
					if err != nil {
						return nil, err
					}
					return v.Info, nil
				},
			},
			"params": &graphql.Field{
				Type: paramsType,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					v, err := viewFrom(p)
					if err != nil {
						return nil, err
					}
					return v.Params, nil
				},
			},
			"matches": &graphql.Field{
				Type: filterType,
				Args: graphql.FieldConfigArgument{
					"url":        &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"type":       &graphql.ArgumentConfig{Type: graphql.String},
					"domain":     &graphql.ArgumentConfig{Type: graphql.String},
					"thirdParty": &graphql.ArgumentConfig{Type: graphql.Boolean},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					v, err := viewFrom(p)
					if err != nil {
						return nil, err
					}
					third, _ := p.Args["thirdParty"].(bool)
					if f := v.Matcher.MatchesAny(stringArg(p, "url"), stringArg(p, "type"), stringArg(p, "domain"), third); f != nil {
						return f, nil
					}
					return nil, nil
				},
			},
		},
	})
}

func mutationType() *graphql.Object {
	urlArg := graphql.FieldConfigArgument{
		"url": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
	}
	textArg := graphql.FieldConfigArgument{
		"text": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
	}

	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"addSubscription": &graphql.Field{
				Type:        graphql.Boolean,
				Description: "Adds a subscription; false if the URL was already known.",
				Args:        urlArg,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					v, err := viewFrom(p)
					if err != nil {
						return nil, err
					}
					in := filters.SubscriptionInput{URL: stringArg(p, "url")}
					if err := checked("addSubscription", in); err != nil {
						return nil, err
					}
					return changed(p, "addSubscription")(v.Storage.AddSubscription(filters.SubscriptionFromURL(in.URL, nil)))
				},
			},
			"removeSubscription": &graphql.Field{
				Type: graphql.Boolean,
				Args: urlArg,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					v, err := viewFrom(p)
					if err != nil {
						return nil, err
					}
					in := filters.SubscriptionInput{URL: stringArg(p, "url")}
					if err := checked("removeSubscription", in); err != nil {
						return nil, err
					}
					sub, ok := v.Storage.Known(in.URL)
					if !ok {
						return false, nil
					}
					return changed(p, "removeSubscription")(v.Storage.RemoveSubscription(sub))
				},
			},
			"addFilter": &graphql.Field{
				Type: graphql.Boolean,
				Args: textArg,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					v, err := viewFrom(p)
					if err != nil {
						return nil, err
					}
					in := filters.FilterInput{Text: stringArg(p, "text")}
					if err := checked("addFilter", in); err != nil {
						return nil, err
					}
					res := v.Validator.ParseFilter(in.Text)
					if res.Error != "" {
						return nil, fmt.Errorf("addFilter: %s", res.Error)
					}
					return changed(p, "addFilter")(v.Storage.AddFilter(res.Filter))
				},
			},
			"removeFilter": &graphql.Field{
				Type: graphql.Boolean,
				Args: textArg,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					v, err := viewFrom(p)
					if err != nil {
						return nil, err
					}
					in := filters.FilterInput{Text: stringArg(p, "text")}
					if err := checked("removeFilter", in); err != nil {
						return nil, err
					}
					return changed(p, "removeFilter")(v.Storage.RemoveFilter(filters.FromText(in.Text)))
				},
			},
			"parseFilters": &graphql.Field{
				Type: parseResultType,
				Args: textArg,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					v, err := viewFrom(p)
					if err != nil {
						return nil, err
					}
					return v.Validator.ParseFilters(stringArg(p, "text")), nil
				},
			},
		},
	})
}

func checked(op string, in any) error {
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		return fmt.Errorf("%s: %s", op, validate.First(errs))
	}
	return nil
}

// changed reports a storage result. Listener errors are logged: the change
// itself has already been applied.
func changed(p graphql.ResolveParams, op string) func(bool, error) (any, error) {
	return func(ok bool, err error) (any, error) {
		if err != nil {
			logger.WithCtx(p.Context).Warn("listener failed", "op", op, "error", err)
		}
		return ok, nil
	}
}

// NewSchema builds the query and mutation schema.
func NewSchema() (graphql.Schema, error) {
	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType(),
		Mutation: mutationType(),
	})
}
