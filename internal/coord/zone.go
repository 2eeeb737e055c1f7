package coord

// zoneLetters are the UTM latitude bands from 80°S northwards, 8° each
// except the last ('X'), which spans 72°N..84°N.
const zoneLetters = "CDEFGHJKLMNPQRSTUVWX"

// InvalidZoneLetter is returned for latitudes outside [-80, 84).
const InvalidZoneLetter byte = '*'

// ResolveZone returns the UTM zone number (1..60, longitudes beyond ±180
// clamped to the edge zones) and latitude band letter for
// a geodetic position in degrees. Latitudes outside [-80, 84) yield
// InvalidZoneLetter; callers must check for it before using the letter.
func ResolveZone(lat, lon float64) (number int, letter byte) {
	// Truncation toward zero keeps the western half of zone 30 in zone 30.
	if lon <= 0.0 {
		number = 30 + int(lon/6.0)
	} else {
		number = 31 + int(lon/6.0)
	}
	// The antimeridian belongs to zones 1 and 60.
	number = max(1, min(60, number))

	switch {
	case lat >= 84.0 || lat < -80.0:
		letter = InvalidZoneLetter
	case lat >= 72.0:
		letter = zoneLetters[len(zoneLetters)-1]
	default:
		letter = zoneLetters[int((lat+80.0)/8.0)]
	}
	return
}

// IsSouthernLetter reports whether a UTM band letter lies in the southern
// hemisphere (C..M, either case).
func IsSouthernLetter(letter byte) bool {
	return (letter >= 'C' && letter <= 'M') || (letter >= 'c' && letter <= 'm')
}

// validZoneLetter reports whether letter is one of the 20 UTM band letters.
func validZoneLetter(letter byte) bool {
	if letter >= 'a' && letter <= 'z' {
		letter -= 'a' - 'A'
	}
	for i := 0; i < len(zoneLetters); i++ {
		if zoneLetters[i] == letter {
			return true
		}
	}
	return false
}
