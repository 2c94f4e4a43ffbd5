package fetchcache

import (
	"net/url"
	"testing"
)

func TestKeyDeterministic(t *testing.T) {
	t.Parallel()

	a := url.Values{}
	a.Set("page", "2")
	a.Set("game", "valorant")

	b := url.Values{}
	b.Set("game", "valorant")
	b.Set("page", "2")

	if Key("/api/tournaments/", a) != Key("/api/tournaments/", b) {
		t.Error("equivalent parameter sets must produce the same key")
	}
	if got := Key("/api/tournaments/", a); got != "/api/tournaments/?game=valorant&page=2" {
		t.Errorf("unexpected key: %s", got)
	}
}

func TestKeyWithoutParams(t *testing.T) {
	t.Parallel()

	if got := Key("/api/teams/", nil); got != "/api/teams/" {
		t.Errorf("unexpected key: %s", got)
	}
	if got := Key("/api/teams/", url.Values{}); got != "/api/teams/" {
		t.Errorf("unexpected key: %s", got)
	}
}

func TestRequestKeyIncludesMethod(t *testing.T) {
	t.Parallel()

	get := requestKey("GET", "http://x/api/posts/")
	post := requestKey("POST", "http://x/api/posts/")

	if get == post {
		t.Error("different methods must derive different keys")
	}
}
