package types

import (
	"errors"
	"testing"
)

func TestEtherToWei(t *testing.T) {
	tests := []struct {
		amount  string
		want    string
		wantErr bool
	}{
		{amount: "1", want: "1000000000000000000"},
		{amount: "0.01", want: "10000000000000000"},
		{amount: "0.000000000000000001", want: "1"},
		{amount: "0", want: "0"},
		{amount: "2.5", want: "2500000000000000000"},
		{amount: "-1", wantErr: true},
		{amount: "0.0000000000000000001", wantErr: true}, // below one wei
		{amount: "abc", wantErr: true},
		{amount: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			wei, err := EtherToWei(tt.amount)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("EtherToWei(%q) accepted an invalid amount", tt.amount)
				}
				return
			}
			if err != nil {
				t.Fatalf("EtherToWei(%q) failed: %v", tt.amount, err)
			}
			if wei.String() != tt.want {
				t.Errorf("EtherToWei(%q) = %s, want %s", tt.amount, wei, tt.want)
			}
		})
	}
}

func TestWeiToEtherRoundTrip(t *testing.T) {
	wei, err := EtherToWei("1.5")
	if err != nil {
		t.Fatal(err)
	}
	if got := WeiToEther(wei); got != "1.500000000000000000" {
		t.Errorf("WeiToEther = %q", got)
	}
	if got := WeiToEther(nil); got != "0" {
		t.Errorf("WeiToEther(nil) = %q, want 0", got)
	}
}

func TestGatewayErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewGatewayError("getAllParties", cause)

	if !errors.Is(err, cause) {
		t.Error("GatewayError does not unwrap to its cause")
	}
	var gw *GatewayError
	if !errors.As(error(err), &gw) || gw.Op != "getAllParties" {
		t.Errorf("unexpected gateway error: %v", err)
	}
}
