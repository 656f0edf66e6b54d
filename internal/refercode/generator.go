package refercode

import (
	"math/rand"
	"strings"
	"sync"
	"time"
)

const (
	// timeLayout задает формат временной части кода: ддммггггччммсс
	timeLayout = "02012006150405"

	// alphabet содержит допустимые буквы суффикса
	alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// partyZone задает фиксированный часовой пояс UTC+7, чтобы сортируемость кодов
// по времени создания не зависела от того, где развернут сервер
var partyZone = time.FixedZone("UTC+7", 7*60*60)

// cyrillicToLatin содержит минимальную таблицу транслитерации для имен без
// латинских букв; покрывает только небольшой набор распространенных глифов
var cyrillicToLatin = map[rune]byte{
	'А': 'A',
	'Б': 'B',
	'В': 'V',
	'Г': 'G',
	'Д': 'D',
}

// Generator генерирует реферальные коды вида <ддммггггччммсс><2 буквы>.
// Часы и источник случайности внедряются при создании, чтобы тесты могли
// проверять формат, а не конкретное значение. Один экземпляр обслуживает
// конкурентные регистрации: rand.Rand не потокобезопасен, поэтому доступ
// к источнику случайности закрыт мьютексом
type Generator struct {
	now func() time.Time
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewGenerator создает генератор с внедренными часами и источником случайности
func NewGenerator(now func() time.Time, rnd *rand.Rand) *Generator {
	return &Generator{
		now: now,
		rnd: rnd,
	}
}

// NewDefaultGenerator создает генератор с системными часами
func NewDefaultGenerator() *Generator {
	return NewGenerator(time.Now, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// Generate возвращает 16-символьный реферальный код.
// Временная часть берется как текущее время в UTC+7, буквенная часть
// выводится из имени:
//  1. если в имени есть минимум 2 латинские буквы, берутся 2 случайные из них;
//  2. если ровно 1, берется она плюс случайная буква A-Z;
//  3. если латинских букв нет, используется транслитерация кириллицы по таблице;
//  4. если и она ничего не дала, берутся 2 случайные буквы A-Z.
//
// Уникальность кода обеспечивает ограничение в базе данных, генератор лишь
// минимизирует вероятность коллизии. Функция никогда не завершается ошибкой
func (g *Generator) Generate(name string) string {
	datetimePart := g.now().In(partyZone).Format(timeLayout)
	return datetimePart + g.suffix(name)
}

// suffix строит двухбуквенную часть кода из имени
func (g *Generator) suffix(name string) string {
	letters := latinLetters(name)
	if len(letters) == 0 {
		letters = transliterate(name)
	}

	switch {
	case len(letters) >= 2:
		first, second := g.sampleTwo(letters)
		return string([]byte{first, second})
	case len(letters) == 1:
		return string([]byte{letters[0], g.randomLetter()})
	default:
		return string([]byte{g.randomLetter(), g.randomLetter()})
	}
}

// sampleTwo выбирает две буквы без возврата, порядок случаен
func (g *Generator) sampleTwo(letters []byte) (byte, byte) {
	i := g.intn(len(letters))
	j := g.intn(len(letters) - 1)
	if j >= i {
		j++
	}
	return letters[i], letters[j]
}

// randomLetter возвращает случайную букву A-Z
func (g *Generator) randomLetter() byte {
	return alphabet[g.intn(len(alphabet))]
}

// intn выдает случайное число под мьютексом, защищая общий источник
// от конкурентных вызовов Generate
func (g *Generator) intn(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rnd.Intn(n)
}

// latinLetters собирает все латинские буквы имени в верхнем регистре
func latinLetters(name string) []byte {
	var letters []byte
	for _, r := range strings.ToUpper(name) {
		if r >= 'A' && r <= 'Z' {
			letters = append(letters, byte(r))
		}
	}
	return letters
}

// transliterate переводит известные кириллические буквы имени в латиницу
func transliterate(name string) []byte {
	var letters []byte
	for _, r := range strings.ToUpper(name) {
		if lat, ok := cyrillicToLatin[r]; ok {
			letters = append(letters, lat)
		}
	}
	return letters
}
