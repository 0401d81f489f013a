package indexer

import (
	"reflect"
	"testing"
)

func TestSplitRange(t *testing.T) {
	got, err := SplitRange(18000000, 18004999, 2000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []BlockRange{
		{From: 18000000, To: 18001999},
		{From: 18002000, To: 18003999},
		{From: 18004000, To: 18004999},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ranges mismatch: %+v != %+v", got, want)
	}
}

func TestSplitRangeExactMultiple(t *testing.T) {
	got, err := SplitRange(1, 20, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []BlockRange{{From: 1, To: 10}, {From: 11, To: 20}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ranges mismatch: %+v != %+v", got, want)
	}
}

func TestSplitRangeSingleBlock(t *testing.T) {
	got, err := SplitRange(5, 5, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0] != (BlockRange{From: 5, To: 5}) {
		t.Fatalf("ranges mismatch: %+v", got)
	}
}

func TestSplitRangeInvalid(t *testing.T) {
	if _, err := SplitRange(10, 9, 1); err == nil {
		t.Fatalf("expected error for inverted range")
	}
	if _, err := SplitRange(1, 10, 0); err == nil {
		t.Fatalf("expected error for zero batch size")
	}
}

func TestParseAddresses(t *testing.T) {
	got, err := ParseAddresses([]string{
		" 0x47176B2Af9885dC6C4575d4eFd63895f7Aaa4790",
		"",
		"0x47176b2af9885dc6c4575d4efd63895f7aaa4790",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected one address, got %d", len(got))
	}

	if _, err := ParseAddresses([]string{"0x1234"}); err == nil {
		t.Fatalf("expected error for short address")
	}
	if _, err := ParseAddresses([]string{"0x0000000000000000000000000000000000000000"}); err == nil {
		t.Fatalf("expected error for zero address")
	}
}
