package ai

import (
	"errors"
	"testing"
)

func TestParseReceiptJSON(t *testing.T) {
	tests := []struct {
		name      string
		reply     string
		wantDate  string
		wantItems int
		wantErr   bool
	}{
		{
			name:      "plain json",
			reply:     `{"date":"2025-06-14","items":[{"name":"Milk","quantity":2,"price":36000,"unit":"l","suggestedCategory":"Dairy"}]}`,
			wantDate:  "2025-06-14",
			wantItems: 1,
		},
		{
			name:      "fenced json",
			reply:     "```json\n{\"date\":\"2025-06-14\",\"items\":[{\"name\":\"Eggs\",\"quantity\":10,\"price\":25000}]}\n```",
			wantDate:  "2025-06-14",
			wantItems: 1,
		},
		{
			name:      "prose around json",
			reply:     "Here you go: {\"date\":\"2025/06/14\",\"items\":[]} Enjoy!",
			wantDate:  "2025/06/14",
			wantItems: 0,
		},
		{
			name:      "blank names dropped",
			reply:     `{"date":"2025-06-14","items":[{"name":" ","price":1},{"name":"Bread","price":"12,5"}]}`,
			wantDate:  "2025-06-14",
			wantItems: 1,
		},
		{name: "not json", reply: "I cannot read this receipt", wantErr: true},
		{name: "negative price", reply: `{"date":"2025-06-14","items":[{"name":"X","price":-3}]}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch, err := parseReceiptJSON(tt.reply)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedReply) {
					t.Fatalf("err = %v, want ErrMalformedReply", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseReceiptJSON: %v", err)
			}
			if batch.Date != tt.wantDate || len(batch.Items) != tt.wantItems {
				t.Fatalf("got date %q with %d items, want %q with %d", batch.Date, len(batch.Items), tt.wantDate, tt.wantItems)
			}
		})
	}
}

func TestParseReceiptJSONDefaults(t *testing.T) {
	batch, err := parseReceiptJSON(`{"date":"2025-06-14","items":[{"name":"Bread","price":"12,5"},{"name":"Salt","quantity":null,"price":3000}]}`)
	if err != nil {
		t.Fatalf("parseReceiptJSON: %v", err)
	}
	if got := batch.Items[0]; got.Price != 12.5 || got.Quantity != 1 {
		t.Fatalf("Bread = %+v, want price 12.5 quantity 1", got)
	}
	if got := batch.Items[1]; got.Quantity != 1 || got.Price != 3000 {
		t.Fatalf("Salt = %+v", got)
	}
}

func TestImageFormat(t *testing.T) {
	tests := map[string]string{
		"image/jpeg": "jpeg",
		"image/jpg":  "jpeg",
		"image/png":  "png",
		"IMAGE/WEBP": "webp",
		"":           "jpeg",
	}
	for in, want := range tests {
		if got := imageFormat(in); got != want {
			t.Errorf("imageFormat(%q) = %q, want %q", in, got, want)
		}
	}
}
