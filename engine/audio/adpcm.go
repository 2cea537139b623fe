package audio

import "github.com/1siamBot/ra2view/engine/binio"

var imaIndexTable = [16]int{
	-1, -1, -1, -1, 2, 4, 6, 8,
	-1, -1, -1, -1, 2, 4, 6, 8,
}

var imaStepTable = [89]int{
	7, 8, 9, 10, 11, 12, 13, 14, 16, 17,
	19, 21, 23, 25, 28, 31, 34, 37, 41, 45,
	50, 55, 60, 66, 73, 80, 88, 97, 107, 118,
	130, 143, 157, 173, 190, 209, 230, 253, 279, 307,
	337, 371, 408, 449, 494, 544, 598, 658, 724, 796,
	876, 963, 1060, 1166, 1282, 1411, 1552, 1707, 1878, 2066,
	2272, 2499, 2749, 3024, 3327, 3660, 4026, 4428, 4871, 5358,
	5894, 6484, 7132, 7845, 8630, 9493, 10442, 11487, 12635, 13899,
	15289, 16818, 18500, 20350, 22385, 24623, 27086, 29794, 32767,
}

// imaState is one channel's decoder state.
type imaState struct {
	predictor int
	index     int
}

func clampIndex(i int) int {
	if i < 0 {
		return 0
	}
	if i > 88 {
		return 88
	}
	return i
}

func (st *imaState) next(nibble byte) int16 {
	step := imaStepTable[st.index]
	diff := step >> 3
	if nibble&4 != 0 {
		diff += step
	}
	if nibble&2 != 0 {
		diff += step >> 1
	}
	if nibble&1 != 0 {
		diff += step >> 2
	}
	if nibble&8 != 0 {
		st.predictor -= diff
	} else {
		st.predictor += diff
	}
	if st.predictor > 32767 {
		st.predictor = 32767
	} else if st.predictor < -32768 {
		st.predictor = -32768
	}
	st.index = clampIndex(st.index + imaIndexTable[nibble&0x0f])
	return int16(st.predictor)
}

// SamplesPerBlock is the per-channel sample count of a full block.
func SamplesPerBlock(blockAlign, channels int) int {
	return (blockAlign-4*channels)*8/(4*channels) + 1
}

// DecodeIMA decodes Microsoft-style IMA ADPCM blocks into interleaved
// PCM16. Each block starts with a 4-byte header per channel (predictor,
// step index, reserved); stereo data alternates 4-byte groups per channel.
// A short final block decodes as far as it goes.
func DecodeIMA(name string, data []byte, channels, blockAlign int) ([]int16, error) {
	if channels < 1 || channels > 2 {
		return nil, binio.Formatf(name, 0, "%d channels", channels)
	}
	if blockAlign <= 4*channels {
		return nil, binio.Formatf(name, 0, "block size %d", blockAlign)
	}
	out := make([]int16, 0, len(data)/blockAlign*SamplesPerBlock(blockAlign, channels)*channels)
	for off := 0; off < len(data); off += blockAlign {
		end := off + blockAlign
		if end > len(data) {
			end = len(data)
		}
		block := data[off:end]
		if len(block) < 4*channels {
			return nil, binio.Truncated(name, int64(off), int64(4*channels), int64(len(block)))
		}
		var st [2]imaState
		for ch := 0; ch < channels; ch++ {
			h := block[4*ch:]
			st[ch].predictor = int(int16(uint16(h[0]) | uint16(h[1])<<8))
			st[ch].index = clampIndex(int(h[2]))
			out = append(out, int16(st[ch].predictor))
		}
		body := block[4*channels:]
		if channels == 1 {
			for _, b := range body {
				out = append(out, st[0].next(b&0x0f), st[0].next(b>>4))
			}
			continue
		}
		for g := 0; g+8 <= len(body); g += 8 {
			var pair [2][8]int16
			for ch := 0; ch < 2; ch++ {
				for k, b := range body[g+4*ch : g+4*ch+4] {
					pair[ch][2*k] = st[ch].next(b & 0x0f)
					pair[ch][2*k+1] = st[ch].next(b >> 4)
				}
			}
			for k := 0; k < 8; k++ {
				out = append(out, pair[0][k], pair[1][k])
			}
		}
	}
	return out, nil
}
