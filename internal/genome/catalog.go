package genome

import "slices"

type Organism string

const (
	HomoSapiens Organism = "HOMO_SAPIENS"
	MusMusculus Organism = "MUS_MUSCULUS"
)

const DefaultOrganism = HomoSapiens

var Organisms = []Organism{HomoSapiens, MusMusculus}

type OutputType string

const (
	ATAC            OutputType = "ATAC"
	CAGE            OutputType = "CAGE"
	DNase           OutputType = "DNASE"
	RNASeq          OutputType = "RNA_SEQ"
	ChIPHistone     OutputType = "CHIP_HISTONE"
	ChIPTF          OutputType = "CHIP_TF"
	SpliceSites     OutputType = "SPLICE_SITES"
	SpliceSiteUsage OutputType = "SPLICE_SITE_USAGE"
	SpliceJunctions OutputType = "SPLICE_JUNCTIONS"
	ContactMaps     OutputType = "CONTACT_MAPS"
	PROcap          OutputType = "PROCAP"
)

// OutputTypes lists every output type the service can score.
var OutputTypes = []OutputType{
	ATAC, CAGE, DNase, RNASeq, ChIPHistone, ChIPTF,
	SpliceSites, SpliceSiteUsage, SpliceJunctions, ContactMaps, PROcap,
}

// TrackOutputTypes are the output types returned as 1-D tracks by predictions.
var TrackOutputTypes = []OutputType{
	ATAC, CAGE, DNase, RNASeq, ChIPHistone, ChIPTF,
	SpliceSites, SpliceSiteUsage, SpliceJunctions, PROcap,
}

type Aggregation string

const (
	DiffMean Aggregation = "DIFF_MEAN"
	DiffMax  Aggregation = "DIFF_MAX"
	AltMean  Aggregation = "ALT_MEAN"
)

var Aggregations = []Aggregation{DiffMean, DiffMax, AltMean}

// Tissue maps a display label to its UBERON ontology CURIE.
type Tissue struct {
	Label string
	CURIE string
}

var Tissues = []Tissue{
	{"Lung", "UBERON:0002048"},
	{"Brain", "UBERON:0000955"},
	{"Right liver lobe", "UBERON:0001114"},
	{"Colon - Transverse", "UBERON:0001157"},
	{"Cerebellum", "UBERON:0002037"},
	{"Brainstem", "UBERON:0002298"},
	{"Spinal cord", "UBERON:0002240"},
	{"Eye", "UBERON:0000970"},
	{"Inner ear", "UBERON:0006860"},
	{"Heart", "UBERON:0000948"},
	{"Trachea", "UBERON:0003126"},
	{"Larynx", "UBERON:0001737"},
	{"Pharynx", "UBERON:0000340"},
	{"Stomach", "UBERON:0000945"},
	{"Small intestine", "UBERON:0002108"},
	{"Duodenum", "UBERON:0002114"},
	{"Jejunum", "UBERON:0002115"},
	{"Ileum", "UBERON:0002116"},
	{"Large intestine", "UBERON:0000160"},
	{"Colon", "UBERON:0001155"},
	{"Rectum", "UBERON:0001052"},
	{"Liver", "UBERON:0002107"},
	{"Gallbladder", "UBERON:0002110"},
	{"Pancreas", "UBERON:0001264"},
	{"Spleen", "UBERON:0002106"},
	{"Kidney", "UBERON:0002113"},
	{"Ureter", "UBERON:0000056"},
	{"Urinary bladder", "UBERON:0001255"},
	{"Urethra", "UBERON:0000057"},
	{"Thyroid gland", "UBERON:0001132"},
	{"Parathyroid gland", "UBERON:0002260"},
	{"Adrenal gland", "UBERON:0002369"},
	{"Pituitary gland", "UBERON:0000007"},
	{"Thymus", "UBERON:0001178"},
	{"Pineal gland", "UBERON:0000986"},
	{"Ovary", "UBERON:0000992"},
	{"Uterus", "UBERON:0000995"},
	{"Vagina", "UBERON:0000996"},
	{"Testis", "UBERON:0000473"},
	{"Prostate gland", "UBERON:0002367"},
	{"Seminal vesicle", "UBERON:0001049"},
	{"Penis", "UBERON:0000464"},
	{"Skin", "UBERON:0002097"},
	{"Bone organ", "UBERON:0001474"},
	{"Skeletal muscle organ", "UBERON:0001134"},
}

// TissueCURIE resolves a tissue label or a raw CURIE.
func TissueCURIE(labelOrCURIE string) (string, bool) {
	for _, t := range Tissues {
		if t.Label == labelOrCURIE || t.CURIE == labelOrCURIE {
			return t.CURIE, true
		}
	}
	return "", false
}

// Context lengths accepted by the model, per kind of input.
var (
	SequenceLengths = []int{2048, 8192, 32768, 131072, 524288, 1048576}
	IntervalLengths = []int{131072, 524288, 1048576}
	ISMLengths      = []int{2048, 8192}
)

func ValidOrganism(o Organism) bool { return slices.Contains(Organisms, o) }

func ValidOutputType(o OutputType) bool { return slices.Contains(OutputTypes, o) }

func ValidAggregation(a Aggregation) bool { return slices.Contains(Aggregations, a) }
