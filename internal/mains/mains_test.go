package mains

import "testing"

func TestHumFrequencyForTimezone(t *testing.T) {
	tests := []struct {
		timezone string
		want     float64
	}{
		// 50Hz countries
		{"Europe/London", 50},
		{"Europe/Paris", 50},
		{"Europe/Berlin", 50},
		{"Australia/Sydney", 50},
		{"Asia/Shanghai", 50},
		{"Asia/Tokyo", 50}, // Japan defaults to 50Hz

		// 60Hz countries
		{"America/New_York", 60},
		{"America/Los_Angeles", 60},
		{"America/Chicago", 60},
		{"America/Toronto", 60},
		{"America/Mexico_City", 60},
		{"America/Bogota", 60},    // Colombia
		{"America/Sao_Paulo", 60}, // Brazil
		{"Asia/Seoul", 60},        // South Korea
		{"Asia/Taipei", 60},       // Taiwan
		{"Asia/Manila", 60},       // Philippines

		// Edge cases
		{"UTC", 50},
		{"GMT", 50},
		{"Etc/UTC", 50},
	}

	for _, tt := range tests {
		t.Run(tt.timezone, func(t *testing.T) {
			got := HumFrequencyForTimezone(tt.timezone)
			if got != tt.want {
				t.Errorf("HumFrequencyForTimezone(%q) = %v, want %v", tt.timezone, got, tt.want)
			}
		})
	}
}

func TestParseOverride(t *testing.T) {
	tests := []struct {
		setting string
		want    float64
		auto    bool // want either 50 or 60
	}{
		{setting: "off", want: 0},
		{setting: "OFF", want: 0},
		{setting: "none", want: 0},
		{setting: "50", want: 50},
		{setting: "60", want: 60},
		{setting: "auto", auto: true},
		{setting: "", auto: true},
		{setting: "whatever", auto: true},
	}
	for _, tt := range tests {
		got := ParseOverride(tt.setting)
		if tt.auto {
			if got != 50 && got != 60 {
				t.Errorf("ParseOverride(%q) = %v, want 50 or 60", tt.setting, got)
			}
		} else if got != tt.want {
			t.Errorf("ParseOverride(%q) = %v, want %v", tt.setting, got, tt.want)
		}
	}
}

func TestHumFrequency(t *testing.T) {
	freq := HumFrequency()
	if freq != 50 && freq != 60 {
		t.Errorf("HumFrequency() = %v, want 50 or 60", freq)
	}
}
