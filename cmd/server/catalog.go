package main

import (
	"tasklane/internal/event"
	flagModel "tasklane/internal/flag/models"
	moduleModel "tasklane/internal/module/models"
	"tasklane/pkg/domain"
)

// catalog is the static manifest list supplied at bootstrap. Order in this
// slice does not matter; the loader resolves dependency order.
func catalog() []moduleModel.Manifest {
	return []moduleModel.Manifest{
		{
			ID:      "reports",
			Name:    "Reports",
			Version: "1.2.0",
			Tier:    domain.TierEnterprise,
			Dependencies: []string{
				"projects",
				"time-tracking",
			},
			Navigation: moduleModel.NavigationNode{
				Icon:  "bar-chart",
				Label: "Reports",
				Path:  "/reports",
				Order: 50,
			},
			Migrations:  []string{"reports_0001_init"},
			Permissions: []string{"reports.view", "reports.export"},
			Events: moduleModel.EventContract{
				Subscribes: []string{event.TypeTaskCompleted, event.TypeProjectArchived},
			},
		},
		{
			ID:      "tasks",
			Name:    "Tasks",
			Version: "3.4.1",
			Tier:    domain.TierTrial,
			Navigation: moduleModel.NavigationNode{
				Icon:  "check-square",
				Label: "Tasks",
				Path:  "/tasks",
				Order: 10,
			},
			Migrations:  []string{"tasks_0001_init", "tasks_0002_add_labels"},
			Permissions: []string{"tasks.view", "tasks.edit"},
			Events: moduleModel.EventContract{
				Publishes: []string{event.TypeTaskCreated, event.TypeTaskCompleted, event.TypeTaskAssigned},
			},
		},
		{
			ID:           "projects",
			Name:         "Projects",
			Version:      "2.8.0",
			Tier:         domain.TierStarter,
			Dependencies: []string{"tasks"},
			Navigation: moduleModel.NavigationNode{
				Icon:  "folder",
				Label: "Projects",
				Path:  "/projects",
				Order: 20,
				Children: []moduleModel.NavigationNode{
					{Label: "Active", Path: "/projects/active", Order: 1},
					{Label: "Archived", Path: "/projects/archived", Order: 2},
				},
			},
			Migrations:  []string{"projects_0001_init"},
			Permissions: []string{"projects.view", "projects.edit"},
			Events: moduleModel.EventContract{
				Publishes:  []string{event.TypeProjectCreated, event.TypeProjectArchived},
				Subscribes: []string{event.TypeTaskCompleted},
			},
		},
		{
			ID:           "boards",
			Name:         "Boards",
			Version:      "1.9.3",
			Tier:         domain.TierStarter,
			Dependencies: []string{"projects"},
			Navigation: moduleModel.NavigationNode{
				Icon:  "columns",
				Label: "Boards",
				Path:  "/boards",
				Order: 30,
			},
			Migrations:  []string{"boards_0001_init"},
			Permissions: []string{"boards.view", "boards.edit"},
			Events: moduleModel.EventContract{
				Subscribes: []string{event.TypeTaskCreated, event.TypeTaskAssigned},
			},
		},
		{
			ID:           "time-tracking",
			Name:         "Time Tracking",
			Version:      "1.1.0",
			Tier:         domain.TierPro,
			Dependencies: []string{"tasks"},
			Navigation: moduleModel.NavigationNode{
				Icon:  "clock",
				Label: "Time Tracking",
				Path:  "/time",
				Order: 40,
			},
			Migrations:  []string{"time_0001_init"},
			Permissions: []string{"time.view", "time.edit"},
			Events: moduleModel.EventContract{
				Subscribes: []string{event.TypeTaskCompleted},
			},
		},
		{
			ID:           "automations",
			Name:         "Automations",
			Version:      "0.7.2",
			Tier:         domain.TierPro,
			Dependencies: []string{"tasks"},
			Navigation: moduleModel.NavigationNode{
				Icon:     "zap",
				Label:    "Automations",
				Path:     "/automations",
				Order:    60,
				Position: "secondary",
				Badge:    "beta",
			},
			Migrations:  []string{"automations_0001_init"},
			Permissions: []string{"automations.manage"},
			Events: moduleModel.EventContract{
				Subscribes: []string{event.TypeTaskCreated, event.TypeCommentAdded},
			},
		},
	}
}

// launchFlags are the feature flags registered at bootstrap. Overrides can
// be set at runtime through the ops surface.
func launchFlags() []flagModel.FeatureFlag {
	return []flagModel.FeatureFlag{
		{
			ID:                "board-redesign",
			Enabled:           true,
			TierRequired:      domain.TierStarter,
			RolloutPercentage: 25,
		},
		{
			ID:                "ai-summaries",
			Enabled:           true,
			TierRequired:      domain.TierEnterprise,
			RolloutPercentage: 10,
		},
		{
			ID:                "bulk-edit",
			Enabled:           true,
			RolloutPercentage: 100,
		},
		{
			// Kill switch kept off until the mobile clients ship support.
			ID:                "offline-sync",
			Enabled:           false,
			RolloutPercentage: 0,
		},
	}
}
