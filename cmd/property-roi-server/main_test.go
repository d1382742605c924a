package main

import (
	"testing"

	"github.com/iwvelando/property-roi/internal/server"
	"github.com/iwvelando/property-roi/pkg/constants"
)

func TestApplyOverrides(t *testing.T) {
	tests := []struct {
		name     string
		flag     string
		expected int64
		wantErr  bool
	}{
		{name: "no override keeps config", flag: "", expected: constants.DefaultMaxUploadSizeBytes},
		{name: "kilobytes", flag: "512K", expected: 512 * 1024},
		{name: "megabytes", flag: "2M", expected: 2 * 1024 * 1024},
		{name: "plain bytes", flag: "4096", expected: 4096},
		{name: "zero is rejected", flag: "0", wantErr: true},
		{name: "bad unit", flag: "1TB", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := server.LoadConfig("")
			if err != nil {
				t.Fatalf("LoadConfig() error = %v", err)
			}

			err = applyOverrides(cfg, tt.flag)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				if cfg.UploadSizeBytes() != constants.DefaultMaxUploadSizeBytes {
					t.Errorf("a rejected override must leave the config alone, got %d", cfg.UploadSizeBytes())
				}
				return
			}
			if err != nil {
				t.Fatalf("applyOverrides() error = %v", err)
			}
			if cfg.UploadSizeBytes() != tt.expected {
				t.Errorf("UploadSizeBytes() = %d, expected %d", cfg.UploadSizeBytes(), tt.expected)
			}
		})
	}
}
