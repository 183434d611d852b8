package decoder

import "github.com/ericlevine/qrstudio"

// block is one Reed-Solomon block: data codewords followed by error
// correction codewords.
type block struct {
	numData   int
	codewords []byte
}

// splitBlocks undoes the codeword interleaving. Data codewords are dealt
// to the blocks in turn, the longer blocks of the second group take one
// extra data codeword, then error correction codewords are dealt the same
// way.
func splitBlocks(raw []byte, v *Version, level qrstudio.ECLevel) []block {
	layout := v.Blocks(level)
	var blocks []block
	for _, g := range layout.Groups {
		for i := 0; i < g.Count; i++ {
			blocks = append(blocks, block{
				numData:   g.DataCodewords,
				codewords: make([]byte, g.DataCodewords+layout.ECPerBlock),
			})
		}
	}
	shortData := blocks[0].numData
	longStart := len(blocks)
	for i, b := range blocks {
		if b.numData > shortData {
			longStart = i
			break
		}
	}

	off := 0
	for i := 0; i < shortData; i++ {
		for j := range blocks {
			blocks[j].codewords[i] = raw[off]
			off++
		}
	}
	for j := longStart; j < len(blocks); j++ {
		blocks[j].codewords[shortData] = raw[off]
		off++
	}
	for i := 0; i < layout.ECPerBlock; i++ {
		for j := range blocks {
			blocks[j].codewords[blocks[j].numData+i] = raw[off]
			off++
		}
	}
	return blocks
}
