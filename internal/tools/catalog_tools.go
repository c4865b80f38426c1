package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/GoSim-25-26J-441/labplan/internal/deck"
	"github.com/GoSim-25-26J-441/labplan/internal/labware"
)

const availableOptions = 5

type labwareCheck struct {
	Valid            bool     `json:"valid"`
	Description      string   `json:"description,omitempty"`
	Suggestions      []string `json:"suggestions,omitempty"`
	AvailableOptions []string `json:"available_options,omitempty"`
}

type labwareMatches struct {
	Matches []string `json:"matches"`
}

type labwareCategory struct {
	Name    string   `json:"name"`
	Labware []string `json:"labware"`
}

type labwareListing struct {
	Categories []labwareCategory `json:"categories"`
}

type layoutCheck struct {
	Valid          bool        `json:"valid"`
	Layout         deck.Layout `json:"layout,omitempty"`
	Warnings       []string    `json:"warnings"`
	UnknownLabware []string    `json:"unknown_labware,omitempty"`
	Error          string      `json:"error,omitempty"`
}

type layoutSuggestion struct {
	Layout   deck.Layout `json:"layout"`
	Unplaced []string    `json:"unplaced"`
	Warnings []string    `json:"warnings"`
}

func (s *service) registerCatalogTools(r *Registry) {
	r.mustRegister(Tool{
		Name:        "validate_labware",
		Aliases:     []string{"validate_labware_exists"},
		Description: "Check that a labware id exists in the catalog",
		Params:      []Param{{Name: "name", Aliases: []string{"labware_name"}, Required: true, Description: "Catalog labware id"}},
		Handler:     s.validateLabware,
	})
	r.mustRegister(Tool{
		Name:        "find_labware",
		Aliases:     []string{"find_labware_by_description"},
		Description: "Find labware by a human-friendly description such as '96 well plate'",
		Params:      []Param{{Name: "description", Required: true, Description: "Free-text description"}},
		Handler:     s.findLabware,
	})
	r.mustRegister(Tool{
		Name:        "list_labware",
		Aliases:     []string{"get_available_labware"},
		Description: "List the labware catalog by category",
		Handler:     s.listLabware,
	})
	r.mustRegister(Tool{
		Name:        "check_deck_layout",
		Description: "Validate a deck layout 'position:labware,position:labware'",
		Params:      []Param{{Name: "spec", Aliases: []string{"positions_and_labware"}, Required: true, Description: "Comma-separated position:labware pairs"}},
		Handler:     s.checkDeckLayout,
	})
	r.mustRegister(Tool{
		Name:        "suggest_deck_layout",
		Aliases:     []string{"suggest_optimal_deck_layout"},
		Description: "Suggest deck positions for a comma-separated labware list",
		Params:      []Param{{Name: "labware_list", Aliases: []string{"required_labware"}, Required: true, Description: "Comma-separated labware ids"}},
		Handler:     s.suggestDeckLayout,
	})
}

func (s *service) validateLabware(_ context.Context, args Args) (*Result, error) {
	name := args.String("name")
	if def, ok := labware.Lookup(name); ok {
		return &Result{
			Data: labwareCheck{Valid: true, Description: def.Description},
			Text: fmt.Sprintf("Valid labware: %s (%s)", name, def.Description),
		}, nil
	}

	if suggestions := labware.Suggest(name); len(suggestions) > 0 {
		return &Result{
			Data: labwareCheck{Suggestions: suggestions},
			Text: fmt.Sprintf("Invalid labware: %s. Did you mean: %s?", name, strings.Join(suggestions, ", ")),
		}, nil
	}

	closest := labware.Closest(name, availableOptions)
	return &Result{
		Data: labwareCheck{AvailableOptions: closest},
		Text: fmt.Sprintf("Invalid labware: %s. Available options: %s...", name, strings.Join(closest, ", ")),
	}, nil
}

func (s *service) findLabware(_ context.Context, args Args) (*Result, error) {
	description := args.String("description")
	matches := labware.SearchByKeyword(description)
	if len(matches) == 0 {
		hints := make([]string, len(labware.SearchHints))
		for i, h := range labware.SearchHints {
			hints[i] = "'" + h + "'"
		}
		return &Result{
			Data: labwareMatches{Matches: matches},
			Text: fmt.Sprintf("No labware found for '%s'. Try: %s", description, strings.Join(hints, ", ")),
		}, nil
	}
	return &Result{
		Data: labwareMatches{Matches: matches},
		Text: "Found labware: " + strings.Join(matches, ", "),
	}, nil
}

func (s *service) listLabware(context.Context, Args) (*Result, error) {
	grouped := labware.ByCategory()
	listing := labwareListing{}
	var b strings.Builder
	b.WriteString("Available labware:\n")
	for _, c := range labware.Categories {
		ids := grouped[c]
		listing.Categories = append(listing.Categories, labwareCategory{Name: c.DisplayName(), Labware: ids})
		fmt.Fprintf(&b, "\n%s:\n", c.DisplayName())
		for _, id := range ids {
			fmt.Fprintf(&b, "  - %s\n", id)
		}
	}
	return &Result{Data: listing, Text: b.String()}, nil
}

// checkDeckLayout reports malformed layouts in the result rather than as an
// error: an invalid layout is an answer, not a failed call.
func (s *service) checkDeckLayout(_ context.Context, args Args) (*Result, error) {
	res, err := s.Checker.Validate(args.String("spec"))
	if err != nil {
		check := layoutCheck{Warnings: []string{}, Error: err.Error()}
		var conflictErr *deck.ConflictError
		if errors.As(err, &conflictErr) {
			for _, c := range conflictErr.Conflicts {
				check.Warnings = append(check.Warnings, c.Message())
			}
		}
		return &Result{
			Data: check,
			Text: fmt.Sprintf("Invalid deck layout: %v. Use format: '1:labware_name,2:labware_name'", err),
		}, nil
	}

	check := layoutCheck{
		Valid:          true,
		Layout:         res.Layout,
		Warnings:       res.Warnings,
		UnknownLabware: res.UnknownLabware,
	}
	if check.Warnings == nil {
		check.Warnings = []string{}
	}

	var b strings.Builder
	if len(res.Warnings) > 0 {
		fmt.Fprintf(&b, "Deck layout valid with potential conflicts:\n")
		for _, w := range res.Warnings {
			fmt.Fprintf(&b, "  - %s\n", w)
		}
	} else {
		b.WriteString("Deck layout valid!\n")
	}
	if len(res.UnknownLabware) > 0 {
		fmt.Fprintf(&b, "\nNot in catalog: %s\n", strings.Join(res.UnknownLabware, ", "))
	}
	b.WriteString("\nLayout:\n")
	b.WriteString(res.Layout.String())
	return &Result{Data: check, Text: b.String()}, nil
}

func (s *service) suggestDeckLayout(_ context.Context, args Args) (*Result, error) {
	suggestion := deck.SuggestLayout(args.StringList("labware_list"))
	out := layoutSuggestion{
		Layout:   suggestion.Layout,
		Unplaced: suggestion.Unplaced,
		Warnings: suggestion.Warnings,
	}
	if out.Unplaced == nil {
		out.Unplaced = []string{}
	}
	if out.Warnings == nil {
		out.Warnings = []string{}
	}

	var b strings.Builder
	b.WriteString("Suggested deck layout:\n\n")
	b.WriteString(suggestion.Layout.String())
	if len(out.Unplaced) > 0 {
		fmt.Fprintf(&b, "\nUnplaced: %s\n", strings.Join(out.Unplaced, ", "))
	}
	for _, w := range out.Warnings {
		fmt.Fprintf(&b, "\nWarning: %s\n", w)
	}
	return &Result{Data: out, Text: b.String()}, nil
}
