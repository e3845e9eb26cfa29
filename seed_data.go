package main

import (
	"context"
	"database/sql"
	"fmt"
)

// mealPlanSeeds is the static meal-plan table: 7 calorie bands for each diet
// type, contiguous from 1000 to 4000 kcal.
var mealPlanSeeds = []mealPlan{
	{MinCalories: 1000, MaxCalories: 1200, DietType: dietVeg.String(),
		Breakfast: "Vegetable poha (1 cup) with green tea",
		Lunch:     "2 phulka, moong dal (1 bowl), cucumber raita",
		Dinner:    "Vegetable daliya khichdi (1 bowl), sauteed greens",
		Snacks:    "1 apple, buttermilk (1 glass)"},
	{MinCalories: 1200, MaxCalories: 1500, DietType: dietVeg.String(),
		Breakfast: "Besan chilla (2) with mint chutney, black coffee",
		Lunch:     "2 multigrain roti, rajma (1 bowl), salad",
		Dinner:    "Paneer bhurji (100 g), 1 roti, clear vegetable soup",
		Snacks:    "Roasted chana (30 g), 1 orange"},
	{MinCalories: 1500, MaxCalories: 1800, DietType: dietVeg.String(),
		Breakfast: "Oats upma (1.5 cups), 1 glass low-fat milk",
		Lunch:     "Brown rice (1 cup), chole (1 bowl), curd, salad",
		Dinner:    "2 roti, palak paneer (1 bowl), dal tadka (small bowl)",
		Snacks:    "Sprouts chaat (1 bowl), handful of almonds"},
	{MinCalories: 1800, MaxCalories: 2000, DietType: dietVeg.String(),
		Breakfast: "Stuffed paratha (2, less oil) with curd",
		Lunch:     "Jeera rice (1 cup), 2 roti, mixed dal, bhindi sabzi",
		Dinner:    "Vegetable pulao (1.5 cups), raita, paneer tikka (4 pcs)",
		Snacks:    "Banana smoothie, roasted makhana (1 cup)"},
	{MinCalories: 2000, MaxCalories: 2500, DietType: dietVeg.String(),
		Breakfast: "Idli (4) with sambar and coconut chutney, 1 glass milk",
		Lunch:     "3 roti, rice (1 cup), dal makhani, aloo gobi, salad",
		Dinner:    "Paneer paratha (2), dal, mixed vegetable curry",
		Snacks:    "Peanut chikki (2 pcs), fruit bowl, lassi"},
	{MinCalories: 2500, MaxCalories: 3000, DietType: dietVeg.String(),
		Breakfast: "Masala dosa (2) with sambar, banana, 1 glass milk",
		Lunch:     "4 roti, rice (1.5 cups), rajma, paneer butter masala, curd",
		Dinner:    "Vegetable biryani (2 cups), raita, dal fry",
		Snacks:    "Dry fruit mix (50 g), paneer sandwich, mango shake"},
	{MinCalories: 3000, MaxCalories: 4000, DietType: dietVeg.String(),
		Breakfast: "Aloo paratha (3) with butter and curd, 2 bananas, milk",
		Lunch:     "5 roti, rice (2 cups), chole, paneer curry, salad, curd",
		Dinner:    "Paneer biryani (2.5 cups), dal makhani, raita, 2 roti",
		Snacks:    "Peanut butter toast (2), protein lassi, dry fruit laddoo (2)"},

	{MinCalories: 1000, MaxCalories: 1200, DietType: dietNonVeg.String(),
		Breakfast: "2 boiled egg whites, 1 slice brown bread, green tea",
		Lunch:     "Grilled chicken (100 g), 1 phulka, salad",
		Dinner:    "Fish curry (light, 100 g), sauteed vegetables",
		Snacks:    "1 apple, buttermilk (1 glass)"},
	{MinCalories: 1200, MaxCalories: 1500, DietType: dietNonVeg.String(),
		Breakfast: "Vegetable omelette (2 eggs), 1 slice brown bread",
		Lunch:     "2 roti, chicken curry (1 bowl, less oil), salad",
		Dinner:    "Grilled fish (150 g), clear soup, steamed vegetables",
		Snacks:    "Roasted chana (30 g), 1 orange"},
	{MinCalories: 1500, MaxCalories: 1800, DietType: dietNonVeg.String(),
		Breakfast: "Egg bhurji (2 eggs), 2 slices brown bread, milk",
		Lunch:     "Brown rice (1 cup), chicken curry, dal, salad",
		Dinner:    "2 roti, fish tikka (150 g), mixed vegetables",
		Snacks:    "Boiled eggs (2), handful of almonds"},
	{MinCalories: 1800, MaxCalories: 2000, DietType: dietNonVeg.String(),
		Breakfast: "Masala omelette (3 eggs), 2 toast, 1 banana",
		Lunch:     "Rice (1 cup), 2 roti, chicken curry, dal, curd",
		Dinner:    "Grilled chicken (150 g), vegetable pulao, raita",
		Snacks:    "Chicken sandwich (small), fruit bowl"},
	{MinCalories: 2000, MaxCalories: 2500, DietType: dietNonVeg.String(),
		Breakfast: "Egg paratha (2), curd, 1 glass milk",
		Lunch:     "3 roti, rice (1 cup), butter chicken (light), dal, salad",
		Dinner:    "Fish curry (200 g), rice (1 cup), sauteed greens",
		Snacks:    "Boiled eggs (3), peanut chikki, banana shake"},
	{MinCalories: 2500, MaxCalories: 3000, DietType: dietNonVeg.String(),
		Breakfast: "Omelette (4 eggs), 3 toast with butter, 2 bananas, milk",
		Lunch:     "4 roti, rice (1.5 cups), mutton curry, dal, curd",
		Dinner:    "Chicken biryani (2 cups), raita, egg curry",
		Snacks:    "Chicken wrap, dry fruit mix (50 g), protein shake"},
	{MinCalories: 3000, MaxCalories: 4000, DietType: dietNonVeg.String(),
		Breakfast: "Egg bhurji (5 eggs), 2 aloo paratha, milk, 2 bananas",
		Lunch:     "5 roti, rice (2 cups), chicken curry, mutton keema, curd",
		Dinner:    "Mutton biryani (2.5 cups), tandoori chicken (200 g), raita",
		Snacks:    "Peanut butter toast (2), protein shake, boiled eggs (3)"},
}

func seedMealPlans(ctx context.Context, tx *sql.Tx) error {
	for _, m := range mealPlanSeeds {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO meal_plans(min_calories, max_calories, diet_type, breakfast, lunch, dinner, snacks)
VALUES(?, ?, ?, ?, ?, ?, ?)`,
			m.MinCalories, m.MaxCalories, m.DietType, m.Breakfast, m.Lunch, m.Dinner, m.Snacks); err != nil {
			return fmt.Errorf("seed meal plan %d-%d %s: %w", m.MinCalories, m.MaxCalories, m.DietType, err)
		}
	}
	return nil
}

var helplineSeeds = []helpline{
	{Name: "AASRA", Number: "9820466726", Description: "24x7 helpline for emotional support and suicide prevention"},
	{Name: "iCall", Number: "9152987821", Description: "Psychosocial helpline by TISS for mental health support"},
	{Name: "Vandrevala Foundation", Number: "9999776555", Description: "Mental health support and counseling services"},
}

var mentalHealthSeeds = []mentalHealthContent{
	{Title: "5-Minute Breathing Exercise", Type: "Video", Category: "Meditation",
		ContentData: "https://www.youtube.com/watch?v=tybOi4hjZFQ"},
	{Title: "Better Sleep Tips", Type: "Tip", Category: "Sleep",
		ContentData: "Maintain a consistent sleep schedule by going to bed and waking up at the same time every day. " +
			"Avoid screens 1 hour before bedtime and create a relaxing bedtime routine."},
	{Title: "Stress Relief Guide", Type: "Tip", Category: "Stress",
		ContentData: "Practice deep breathing: inhale for 4 counts, hold for 4, exhale for 4. Take short walks in nature. " +
			"Journal your thoughts and feelings. Limit caffeine and prioritize self-care activities."},
}

func seedResources(ctx context.Context, tx *sql.Tx) error {
	for _, h := range helplineSeeds {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO helplines(name, number, description) VALUES(?, ?, ?)`,
			h.Name, h.Number, h.Description); err != nil {
			return fmt.Errorf("seed helpline %s: %w", h.Name, err)
		}
	}
	for _, c := range mentalHealthSeeds {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO mental_health_content(title, type, category, content_data) VALUES(?, ?, ?, ?)`,
			c.Title, c.Type, c.Category, c.ContentData); err != nil {
			return fmt.Errorf("seed mental health content %q: %w", c.Title, err)
		}
	}
	return nil
}
