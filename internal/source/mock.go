package source

import (
	"context"
	"strings"
	"time"

	"github.com/prodscope/prodscope/internal/model"
)

type mockSource struct {
	now func() time.Time
}

// NewMock returns the demo fixture source. It serves canned discussion
// threads themed by keywords in the query so demos and tests run without
// any provider credentials.
func NewMock() Source {
	return &mockSource{now: time.Now}
}

func (s *mockSource) Name() model.SourceName {
	return model.SourceDemo
}

func (s *mockSource) Fetch(_ context.Context, query string, limits Limits) ([]model.SearchItem, error) {
	items := fixturesFor(query, s.now())
	if limits.MaxItems > 0 && len(items) > limits.MaxItems {
		items = items[:limits.MaxItems]
	}
	if limits.MaxCommentsPerItem > 0 {
		for i := range items {
			if len(items[i].Comments) > limits.MaxCommentsPerItem {
				items[i].Comments = items[i].Comments[:limits.MaxCommentsPerItem]
			}
			items[i].NumComments = len(items[i].Comments)
		}
	}
	return items, nil
}

func fixturesFor(query string, now time.Time) []model.SearchItem {
	q := strings.ToLower(query)
	base := now.AddDate(0, 0, -3).Unix()

	switch {
	case strings.Contains(q, "meal") || strings.Contains(q, "cook") || strings.Contains(q, "recipe") || strings.Contains(q, "food"):
		return mealPlanningFixtures(base)
	case strings.Contains(q, "fitness") || strings.Contains(q, "workout") || strings.Contains(q, "gym") || strings.Contains(q, "exercise"):
		return fitnessFixtures(base)
	default:
		return productivityFixtures(base)
	}
}

func mealPlanningFixtures(base int64) []model.SearchItem {
	return []model.SearchItem{
		{
			Title:       "Meal planning apps never fit how I actually cook",
			Body:        "Every app assumes I cook one recipe per meal. Real life is leftovers, batch cooking, and improvising with what's in the fridge. I end up abandoning the plan by Wednesday.",
			URL:         "https://reddit.com/r/MealPrepSunday/demo1",
			Channel:     "r/MealPrepSunday",
			Score:       842,
			NumComments: 3,
			CreatedUnix: base,
			Comments: []model.Comment{
				{Text: "Same here. I spend 2 hours every Sunday planning and by midweek the plan is dead because something came up.", Score: 156, Author: "prepfatigue"},
				{Text: "The grocery lists are the worst part. They never account for what I already have, so I buy duplicates constantly.", Score: 98, Author: "pantryfull"},
				{Text: "I gave up on apps and went back to a paper notebook. At least it doesn't nag me with notifications.", Score: 61, Author: "analogcook"},
			},
		},
		{
			Title:       "Why does every recipe app hide the actual recipe behind a paywall",
			Body:        "Downloaded three different meal planners this month. All of them show you the photo, then lock the ingredient list behind a subscription. That's not a free trial, that's a bait and switch.",
			URL:         "https://reddit.com/r/Cooking/demo2",
			Channel:     "r/Cooking",
			Score:       510,
			NumComments: 2,
			CreatedUnix: base - 86400,
			Comments: []model.Comment{
				{Text: "And the subscriptions are $12/month for what is essentially a list of recipes scraped from blogs.", Score: 203, Author: "notpaying"},
				{Text: "The free tier gave me 5 recipes then locked everything. Uninstalled the same day.", Score: 87, Author: "trialandterror"},
			},
		},
		{
			Title:       "Dietary restrictions make meal planning apps useless for me",
			Body:        "Celiac plus a nut allergy. Every app lets me set a filter, then half the suggested recipes still contain wheat or almonds. I have to read every ingredient list anyway, so what is the app even for?",
			URL:         "https://reddit.com/r/glutenfree/demo3",
			Channel:     "r/glutenfree",
			Score:       377,
			NumComments: 2,
			CreatedUnix: base - 2*86400,
			Comments: []model.Comment{
				{Text: "The allergy filters are decorative. I reported a flagged recipe three times and it is still marked nut-free.", Score: 144, Author: "epipencarrier"},
				{Text: "Tried four apps. None of them can combine two restrictions at once without returning zero results.", Score: 72, Author: "doublefiltered"},
			},
		},
	}
}

func fitnessFixtures(base int64) []model.SearchItem {
	return []model.SearchItem{
		{
			Title:       "Fitness apps are great for two weeks and then I stop opening them",
			Body:        "The onboarding is fun, the streaks are motivating, and then week three hits and the app has nothing new to offer. The workouts repeat and the reminders start feeling like spam.",
			URL:         "https://reddit.com/r/fitness/demo1",
			Channel:     "r/fitness",
			Score:       921,
			NumComments: 3,
			CreatedUnix: base,
			Comments: []model.Comment{
				{Text: "The streak guilt is real. Miss one day and the app acts like you personally betrayed it. That's when I uninstall.", Score: 245, Author: "streakbroken"},
				{Text: "The plans never adapt. I told it I hurt my knee and it kept scheduling jump squats.", Score: 130, Author: "kneedeep"},
				{Text: "Tracking a workout takes longer than the rest between sets. Too many taps.", Score: 77, Author: "tapfatigue"},
			},
		},
		{
			Title:       "Heart rate sync between my watch and the app fails constantly",
			Body:        "Half my runs show up with no heart rate data because the Bluetooth handoff silently failed. Support told me to reinstall. It worked for a week, then stopped again.",
			URL:         "https://reddit.com/r/running/demo2",
			Channel:     "r/running",
			Score:       468,
			NumComments: 2,
			CreatedUnix: base - 86400,
			Comments: []model.Comment{
				{Text: "Lost a month of training data to a sync bug. No export, no backup, just gone.", Score: 188, Author: "datagone"},
				{Text: "The worst part is it fails silently. You finish the run and only then find out nothing recorded.", Score: 95, Author: "silentfail"},
			},
		},
		{
			Title:       "Paying for a personal trainer app that is clearly just templates",
			Body:        "It's marketed as AI-personalized coaching. Three friends and I compared plans. Identical workouts, identical order, different names at the top. $30 a month for a PDF generator.",
			URL:         "https://reddit.com/r/workout/demo3",
			Channel:     "r/workout",
			Score:       350,
			NumComments: 2,
			CreatedUnix: base - 2*86400,
			Comments: []model.Comment{
				{Text: "Asked to cancel and the flow was five screens of guilt trips before the button appeared.", Score: 167, Author: "cancelquest"},
				{Text: "The personalization is your name in the header. That's it.", Score: 84, Author: "templatespotter"},
			},
		},
	}
}

func productivityFixtures(base int64) []model.SearchItem {
	return []model.SearchItem{
		{
			Title:       "Every productivity tool becomes another thing to maintain",
			Body:        "I have tried the big task managers and the note systems. They all work until maintaining the system takes more time than the work it organizes. Then the backlog rots and I start over in a new app.",
			URL:         "https://reddit.com/r/productivity/demo1",
			Channel:     "r/productivity",
			Score:       1104,
			NumComments: 3,
			CreatedUnix: base,
			Comments: []model.Comment{
				{Text: "The migration treadmill is the real productivity killer. I've exported and re-imported my tasks four times this year.", Score: 312, Author: "appmigrant"},
				{Text: "Notifications are the first thing I turn off in every one of these, which defeats the point of reminders.", Score: 140, Author: "muteall"},
				{Text: "Sync conflicts between my phone and laptop regularly duplicate or eat tasks. I stopped trusting the data.", Score: 89, Author: "conflictcopy"},
			},
		},
		{
			Title:       "Calendar and task apps refuse to talk to each other",
			Body:        "My tasks live in one app, my meetings in another, and neither will show me a single honest picture of my day. The integrations exist on paper but break every other week.",
			URL:         "https://reddit.com/r/getdisciplined/demo2",
			Channel:     "r/getdisciplined",
			Score:       589,
			NumComments: 2,
			CreatedUnix: base - 86400,
			Comments: []model.Comment{
				{Text: "The two-way sync corrupted my calendar with duplicate events twice. Took an afternoon to clean up each time.", Score: 176, Author: "dupevents"},
				{Text: "Connected the integration, it worked for a day, then silently stopped. No error, no warning, just stale data.", Score: 102, Author: "staledata"},
			},
		},
		{
			Title:       "Team adopted a project tool and now updates take longer than standup did",
			Body:        "We moved to a heavyweight project tracker to save meeting time. Now everyone spends 20 minutes a day updating tickets, statuses, and custom fields nobody reads. The tool became the job.",
			URL:         "https://reddit.com/r/projectmanagement/demo3",
			Channel:     "r/projectmanagement",
			Score:       432,
			NumComments: 2,
			CreatedUnix: base - 2*86400,
			Comments: []model.Comment{
				{Text: "The required custom fields are the problem. Six dropdowns to log a ten-minute task.", Score: 159, Author: "fieldfatigue"},
				{Text: "Search can't find a ticket I created yesterday by its exact title. How is that possible in 2026?", Score: 93, Author: "searchbroken"},
			},
		},
	}
}
