package s3

import "testing"

func TestObjectURL(t *testing.T) {
	got := objectURL("http://localhost:9000/", "rento-images", "/listings/1/a b.jpg")
	want := "http://localhost:9000/rento-images/listings/1/a%20b.jpg"
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestHostOf(t *testing.T) {
	cases := map[string]string{
		"http://minio:9000": "minio:9000",
		"minio:9000":        "minio:9000",
	}
	for in, want := range cases {
		if got := hostOf(in); got != want {
			t.Fatalf("%s: expected %s, got %s", in, want, got)
		}
	}
}

func TestNewImageStoreRequiresBucket(t *testing.T) {
	if _, err := NewImageStore(Options{Endpoint: "localhost:9000"}, nil); err == nil {
		t.Fatalf("expected bucket error")
	}
	store, err := NewImageStore(Options{Endpoint: "localhost:9000", Bucket: "rento-images"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.publicBaseURL != "http://localhost:9000" {
		t.Fatalf("unexpected public base %s", store.publicBaseURL)
	}
}
