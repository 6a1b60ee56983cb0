package mtproto

import (
	"testing"

	"github.com/Devensh22345/account-manage/internal/domain/remote"
)

func TestParseRef(t *testing.T) {
	tests := []struct {
		in   string
		want Ref
	}{
		{in: "@durov", want: Ref{Kind: RefUsername, Username: "durov"}},
		{in: "durov", want: Ref{Kind: RefUsername, Username: "durov"}},
		{in: "https://t.me/durov", want: Ref{Kind: RefUsername, Username: "durov"}},
		{in: "t.me/s/durov", want: Ref{Kind: RefUsername, Username: "durov"}},
		{in: "  http://telegram.me/durov/  ", want: Ref{Kind: RefUsername, Username: "durov"}},
		{in: "https://t.me/+AbCdEf123", want: Ref{Kind: RefInvite, Hash: "AbCdEf123"}},
		{in: "t.me/joinchat/XyZ", want: Ref{Kind: RefInvite, Hash: "XyZ"}},
		{in: "https://t.me/addlist/slug42", want: Ref{Kind: RefFolder, Slug: "slug42"}},
		{in: "https://t.me/durov/123?single", want: Ref{Kind: RefPost, Username: "durov", MsgID: 123}},
		{in: "123456789", want: Ref{Kind: RefID, ID: 123456789}},
		{in: " -1001234567890 ", want: Ref{Kind: RefID, ID: -1001234567890}},
	}

	for _, tt := range tests {
		got, err := ParseRef(tt.in)
		if err != nil {
			t.Errorf("ParseRef(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseRef(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestParseRefInvalid(t *testing.T) {
	for _, in := range []string{"", "@", "hello world", "https://t.me/", "t.me/c/123/45", "t.me/durov/abc", "https://example.com/durov", "1234", "-00000"} {
		_, err := ParseRef(in)
		if err == nil {
			t.Errorf("ParseRef(%q) expected error", in)
			continue
		}
		if remote.KindOf(err) != remote.KindInvalidTarget {
			t.Errorf("ParseRef(%q) kind = %s", in, remote.KindOf(err))
		}
	}
}

func TestPostLink(t *testing.T) {
	ref, err := ParseRef("t.me/durov/77")
	if err != nil {
		t.Fatalf("ParseRef: %v", err)
	}
	if got := ref.PostLink(); got != "https://t.me/durov/77" {
		t.Errorf("PostLink = %q", got)
	}
}
