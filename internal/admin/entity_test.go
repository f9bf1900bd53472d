package admin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-streaming-store/internal/apperr"
)

const driveID = "1AbCdEfGhIjKlMnOpQrStUvWxYz012345"

func TestDecodeVariants(t *testing.T) {
	tests := []struct {
		kind Kind
		body string
		want any
	}{
		{KindProducts, `{"name":"Netflix","price":"15.90","stock":3}`, &Product{}},
		{KindCategories, `{"name":"Video"}`, &StoreCategory{}},
		{KindUsers, `{"name":"Ana"}`, &User{}},
		{KindFAQs, `{"question":"q","answer":"a"}`, &FAQ{}},
		{KindSocial, `{"platform":"TikTok","url":"https://tiktok.com"}`, &SocialLink{}},
		{KindSettings, `{"site_title":"Delte"}`, &Settings{}},
		{KindPosts, `{"title":"Hola"}`, &Post{}},
		{KindBlogCategories, `{"name":"Tips"}`, &BlogCategory{}},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			e, err := Decode(tt.kind, []byte(tt.body))
			require.NoError(t, err)
			assert.IsType(t, tt.want, e)
			assert.Equal(t, tt.kind, e.Kind())
			assert.NotEmpty(t, e.Kind().Table())
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode("orders", []byte(`{}`))
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = Decode(KindProducts, []byte(`{"price":"cheap"}`))
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = ParseKind("orders")
	assert.ErrorIs(t, err, apperr.ErrValidation)
	k, err := ParseKind("blog-categories")
	require.NoError(t, err)
	assert.Equal(t, KindBlogCategories, k)
}

func TestValidate(t *testing.T) {
	p := &Product{Name: "Max", ImageID: "https://drive.google.com/file/d/" + driveID + "/view"}
	require.NoError(t, p.validate())
	assert.Equal(t, driveID, p.ImageID, "addresses are reduced to the identifier")

	p = &Product{Name: "Max", ImageID: "not-a-drive-id"}
	assert.ErrorIs(t, p.validate(), apperr.ErrValidation)

	p = &Product{Name: "Max", Stock: -1}
	assert.ErrorIs(t, p.validate(), apperr.ErrValidation)

	assert.ErrorIs(t, (&FAQ{Question: "q"}).validate(), apperr.ErrValidation)
	assert.ErrorContains(t, (&User{Name: "Ana"}).validate(), "phone is required")
	assert.NoError(t, (&Post{Title: "t"}).validate())
}
