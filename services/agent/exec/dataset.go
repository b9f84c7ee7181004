// Copyright (C) 2026 Quayside AI (oss@quayside.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package exec

// NewDockDataset returns a MemoryExecutor pre-loaded with the dock
// operations reference dataset: doors, assignments, events and the
// inbound/outbound work queues across six sites. The data is small but
// shaped like production exports, so answers to questions about it are
// checkable by hand in tests.
func NewDockDataset() *MemoryExecutor {
	m := NewMemoryExecutor()

	// AddTable only fails on malformed identifiers or ragged rows,
	// which would be a programming error in the literals below.
	must := func(err error) {
		if err != nil {
			panic("dock dataset: " + err.Error())
		}
	}

	must(m.AddTable(Table{
		Name: "dock_doors",
		Columns: []Column{
			{Name: "door_id", Type: TypeText},
			{Name: "location", Type: TypeText},
			{Name: "is_active", Type: TypeInt},
		},
	}, [][]any{
		{"FRE-D01", "Fremont CA", 1},
		{"FRE-D02", "Fremont CA", 1},
		{"FRE-D03", "Fremont CA", 0},
		{"FRE-D04", "Fremont CA", 1},
		{"AUS-D01", "Austin TX", 1},
		{"AUS-D02", "Austin TX", 1},
		{"AUS-D03", "Austin TX", 1},
		{"SHA-D01", "Shanghai", 1},
		{"SHA-D02", "Shanghai", 0},
		{"BER-D01", "Berlin", 1},
		{"BER-D02", "Berlin", 1},
		{"NEV-D01", "Nevada Gigafactory", 1},
		{"NEV-D02", "Nevada Gigafactory", 1},
		{"RAL-D01", "Raleigh Service Center", 1},
	}))

	must(m.AddTable(Table{
		Name: "dock_assignments",
		Columns: []Column{
			{Name: "assignment_id", Type: TypeText},
			{Name: "location", Type: TypeText},
			{Name: "door_id", Type: TypeText},
			{Name: "job_type", Type: TypeText},
			{Name: "ref_id", Type: TypeText},
			{Name: "start_utc", Type: TypeText},
			{Name: "end_utc", Type: TypeText},
			{Name: "crew", Type: TypeText},
			{Name: "status", Type: TypeText},
		},
	}, [][]any{
		{"ASG-1001", "Fremont CA", "FRE-D01", "unload", "TRK-2201", "2026-08-24T06:00:00Z", "2026-08-24T06:45:00Z", "crew-a", "completed"},
		{"ASG-1002", "Fremont CA", "FRE-D02", "load", "LOAD-3101", "2026-08-24T06:15:00Z", "2026-08-24T07:05:00Z", "crew-b", "completed"},
		{"ASG-1003", "Fremont CA", "FRE-D01", "unload", "TRK-2202", "2026-08-24T07:00:00Z", "2026-08-24T07:40:00Z", "crew-a", "in_progress"},
		{"ASG-1004", "Fremont CA", "FRE-D04", "load", "LOAD-3102", "2026-08-24T07:30:00Z", "2026-08-24T08:20:00Z", "crew-c", "scheduled"},
		{"ASG-1005", "Austin TX", "AUS-D01", "unload", "TRK-2210", "2026-08-24T05:30:00Z", "2026-08-24T06:10:00Z", "crew-d", "completed"},
		{"ASG-1006", "Austin TX", "AUS-D02", "unload", "TRK-2211", "2026-08-24T06:00:00Z", "2026-08-24T06:50:00Z", "crew-d", "cancelled"},
		{"ASG-1007", "Austin TX", "AUS-D03", "load", "LOAD-3110", "2026-08-24T06:30:00Z", "2026-08-24T07:15:00Z", "crew-e", "in_progress"},
		{"ASG-1008", "Shanghai", "SHA-D01", "unload", "TRK-2220", "2026-08-24T02:00:00Z", "2026-08-24T02:55:00Z", "crew-f", "completed"},
		{"ASG-1009", "Shanghai", "SHA-D01", "load", "LOAD-3120", "2026-08-24T03:00:00Z", "2026-08-24T03:50:00Z", "crew-f", "completed"},
		{"ASG-1010", "Berlin", "BER-D01", "unload", "TRK-2230", "2026-08-24T04:00:00Z", "2026-08-24T04:40:00Z", "crew-g", "completed"},
		{"ASG-1011", "Berlin", "BER-D02", "load", "LOAD-3130", "2026-08-24T05:00:00Z", "2026-08-24T05:55:00Z", "crew-g", "scheduled"},
		{"ASG-1012", "Nevada Gigafactory", "NEV-D01", "unload", "TRK-2240", "2026-08-24T06:00:00Z", "2026-08-24T06:35:00Z", "crew-h", "in_progress"},
		{"ASG-1013", "Nevada Gigafactory", "NEV-D02", "load", "LOAD-3140", "2026-08-24T06:45:00Z", "2026-08-24T07:30:00Z", "crew-h", "scheduled"},
		{"ASG-1014", "Raleigh Service Center", "RAL-D01", "unload", "TRK-2250", "2026-08-24T08:00:00Z", "2026-08-24T08:30:00Z", "crew-i", "scheduled"},
	}))

	must(m.AddTable(Table{
		Name: "dock_events",
		Columns: []Column{
			{Name: "event_id", Type: TypeText},
			{Name: "ts_utc", Type: TypeText},
			{Name: "location", Type: TypeText},
			{Name: "door_id", Type: TypeText},
			{Name: "job_type", Type: TypeText},
			{Name: "ref_id", Type: TypeText},
			{Name: "event_type", Type: TypeText},
			{Name: "reason_code", Type: TypeText},
			{Name: "reason_detail", Type: TypeText},
		},
	}, [][]any{
		{"EVT-5001", "2026-08-24T06:02:00Z", "Fremont CA", "FRE-D01", "unload", "TRK-2201", "arrival", "", ""},
		{"EVT-5002", "2026-08-24T06:44:00Z", "Fremont CA", "FRE-D01", "unload", "TRK-2201", "departure", "", ""},
		{"EVT-5003", "2026-08-24T06:20:00Z", "Fremont CA", "FRE-D02", "load", "LOAD-3101", "delay", "crew_short", "crew-b down one member"},
		{"EVT-5004", "2026-08-24T07:05:00Z", "Fremont CA", "FRE-D03", "unload", "TRK-2203", "door_fault", "hydraulic", "leveler stuck at 40%"},
		{"EVT-5005", "2026-08-24T06:05:00Z", "Austin TX", "AUS-D02", "unload", "TRK-2211", "cancellation", "no_show", "carrier missed appointment"},
		{"EVT-5006", "2026-08-24T06:40:00Z", "Austin TX", "AUS-D03", "load", "LOAD-3110", "delay", "paperwork", "customs docs pending"},
		{"EVT-5007", "2026-08-24T02:10:00Z", "Shanghai", "SHA-D01", "unload", "TRK-2220", "arrival", "", ""},
		{"EVT-5008", "2026-08-24T03:48:00Z", "Shanghai", "SHA-D01", "load", "LOAD-3120", "departure", "", ""},
		{"EVT-5009", "2026-08-24T04:05:00Z", "Berlin", "BER-D01", "unload", "TRK-2230", "arrival", "", ""},
		{"EVT-5010", "2026-08-24T05:10:00Z", "Berlin", "BER-D02", "load", "LOAD-3130", "delay", "traffic", "autobahn closure inbound"},
		{"EVT-5011", "2026-08-24T06:12:00Z", "Nevada Gigafactory", "NEV-D01", "unload", "TRK-2240", "arrival", "", ""},
		{"EVT-5012", "2026-08-24T06:50:00Z", "Nevada Gigafactory", "NEV-D02", "load", "LOAD-3140", "delay", "equipment", "forklift battery swap"},
	}))

	must(m.AddTable(Table{
		Name: "inbound_trucks",
		Columns: []Column{
			{Name: "truck_id", Type: TypeText},
			{Name: "eta_utc", Type: TypeText},
			{Name: "priority", Type: TypeInt},
			{Name: "unload_min", Type: TypeInt},
		},
	}, [][]any{
		{"TRK-2201", "2026-08-24T06:00:00Z", 1, 45},
		{"TRK-2202", "2026-08-24T07:00:00Z", 2, 40},
		{"TRK-2203", "2026-08-24T07:15:00Z", 3, 35},
		{"TRK-2210", "2026-08-24T05:30:00Z", 1, 40},
		{"TRK-2211", "2026-08-24T06:00:00Z", 2, 50},
		{"TRK-2220", "2026-08-24T02:00:00Z", 1, 55},
		{"TRK-2230", "2026-08-24T04:00:00Z", 2, 40},
		{"TRK-2240", "2026-08-24T06:00:00Z", 1, 35},
		{"TRK-2250", "2026-08-24T08:00:00Z", 3, 30},
	}))

	must(m.AddTable(Table{
		Name: "outbound_loads",
		Columns: []Column{
			{Name: "load_id", Type: TypeText},
			{Name: "cutoff_utc", Type: TypeText},
			{Name: "priority", Type: TypeInt},
			{Name: "load_min", Type: TypeInt},
		},
	}, [][]any{
		{"LOAD-3101", "2026-08-24T08:00:00Z", 1, 50},
		{"LOAD-3102", "2026-08-24T09:00:00Z", 2, 50},
		{"LOAD-3110", "2026-08-24T08:30:00Z", 1, 45},
		{"LOAD-3120", "2026-08-24T05:00:00Z", 1, 50},
		{"LOAD-3130", "2026-08-24T07:00:00Z", 2, 55},
		{"LOAD-3140", "2026-08-24T09:30:00Z", 2, 45},
	}))

	return m
}
