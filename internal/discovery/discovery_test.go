package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingPage = `<html><body>
<div class="entity-card"><a href="/sfactmessage/aaa-111">Заключение договора</a></div>
<div class="entity-card"><a href="/sfactmessage/bbb-222">Изменение договора</a></div>
<div class="entity-card"><a href="/sfactmessage/aaa-111">Дубликат</a></div>
<a href="https://fedresurs.ru/sfactmessage/ccc-333">Абсолютная ссылка</a>
<a href="/company/xyz">Не сообщение</a>
<a href="/bankruptmessage/ddd">Другой раздел</a>
<a>Без ссылки</a>
</body></html>`

func TestNoticeURLs(t *testing.T) {
	urls, err := NoticeURLs(listingPage, "https://fedresurs.ru/encumbrances")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://fedresurs.ru/sfactmessage/aaa-111",
		"https://fedresurs.ru/sfactmessage/bbb-222",
		"https://fedresurs.ru/sfactmessage/ccc-333",
	}, urls)
}

func TestNoticeURLs_EmptyListing(t *testing.T) {
	urls, err := NoticeURLs("<html><body><p>Ничего не найдено</p></body></html>",
		"https://fedresurs.ru/encumbrances")
	require.NoError(t, err)
	assert.Empty(t, urls)
}

func TestNoticeURLs_BadBaseURL(t *testing.T) {
	_, err := NoticeURLs(listingPage, "://broken")
	assert.Error(t, err)
}
