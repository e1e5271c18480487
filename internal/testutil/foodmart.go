// Package testutil holds fixtures shared by package tests.
package testutil

import "github.com/roach88/mdxbridge/internal/schema"

// FoodMartSpec returns a small FoodMart-style schema with one cube, Sales.
//
// Product (3 levels):
//
//	Drink
//	  Alcoholic Beverages: Beer and Wine
//	  Beverages: Carbonated Beverages, Drinks, Hot Beverages, Pure Juice Beverages
//	  Dairy: Dairy
//	Food
//	  Baked Goods
//	  Produce: Fruit, Vegetables
//	Non-Consumable
//	  Household
//
// Time has a default hierarchy (Year, Quarter; default 1997.Q1) and a
// Weekly hierarchy. Promotion Media has an All Media root. Store goes down
// to cities. Measures is a flat list.
//
// Each call returns a fresh value.
func FoodMartSpec() *schema.Spec {
	return &schema.Spec{
		Name: "FoodMart",
		Cubes: []schema.CubeSpec{{
			Name: "Sales",
			Dimensions: []schema.DimensionSpec{
				{
					Name: "Measures",
					Hierarchies: []schema.HierarchySpec{{
						Levels:  []string{"MeasuresLevel"},
						Members: leaves("Unit Sales", "Store Cost", "Store Sales"),
					}},
				},
				{
					Name: "Product",
					Hierarchies: []schema.HierarchySpec{{
						Levels: []string{"Product Family", "Product Department", "Product Category"},
						Members: []schema.MemberSpec{
							node("Drink",
								node("Alcoholic Beverages", leaves("Beer and Wine")...),
								node("Beverages", leaves("Carbonated Beverages", "Drinks", "Hot Beverages", "Pure Juice Beverages")...),
								node("Dairy", leaves("Dairy")...),
							),
							node("Food",
								node("Baked Goods"),
								node("Produce", leaves("Fruit", "Vegetables")...),
							),
							node("Non-Consumable", node("Household")),
						},
					}},
				},
				{
					Name: "Time",
					Hierarchies: []schema.HierarchySpec{
						{
							Levels:  []string{"Year", "Quarter"},
							Default: []string{"1997", "Q1"},
							Members: []schema.MemberSpec{
								node("1997", leaves("Q1", "Q2", "Q3", "Q4")...),
								node("1998", leaves("Q1", "Q2", "Q3", "Q4")...),
							},
						},
						{
							Name:   "Weekly",
							Levels: []string{"Year", "Week"},
							Members: []schema.MemberSpec{
								node("1997", leaves("1", "2")...),
							},
						},
					},
				},
				{
					Name: "Promotion Media",
					Hierarchies: []schema.HierarchySpec{{
						Levels: []string{"(All)", "Media Type"},
						Members: []schema.MemberSpec{
							node("All Media", leaves("Bulk Mail", "Daily Paper", "Radio", "TV")...),
						},
					}},
				},
				{
					Name: "Store",
					Hierarchies: []schema.HierarchySpec{{
						Levels: []string{"Store Country", "Store State", "Store City"},
						Members: []schema.MemberSpec{
							node("Canada", node("BC", leaves("Vancouver")...)),
							node("USA",
								node("CA", leaves("Los Angeles", "San Francisco")...),
								node("OR", leaves("Portland")...),
								node("WA", leaves("Seattle")...),
							),
						},
					}},
				},
			},
		}},
	}
}

func node(name string, children ...schema.MemberSpec) schema.MemberSpec {
	return schema.MemberSpec{Name: name, Children: children}
}

func leaves(names ...string) []schema.MemberSpec {
	out := make([]schema.MemberSpec, len(names))
	for i, n := range names {
		out[i] = schema.MemberSpec{Name: n}
	}
	return out
}
