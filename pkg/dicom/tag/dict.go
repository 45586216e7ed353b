package tag

// Entry is a data dictionary row for a tag.
type Entry struct {
	VR      string
	VM      string
	Keyword string
}

// Lookup returns the dictionary entry for a tag. Private and unregistered
// tags have no entry; callers fall back to UN semantics.
func Lookup(t Tag) (Entry, bool) {
	e, ok := dict[t]
	return e, ok
}

// KeywordOf returns the dictionary keyword for a tag, or "" when unknown.
func KeywordOf(t Tag) string {
	if e, ok := dict[t]; ok {
		return e.Keyword
	}
	return ""
}

// ByKeyword returns the tag registered under a dictionary keyword.
func ByKeyword(keyword string) (Tag, bool) {
	t, ok := byKeyword[keyword]
	return t, ok
}

// GroupName returns the descriptive name of a tag group, used for
// group-level rule matching ("Meta Element", "Image Presentation", ...).
func GroupName(group uint16) string {
	if n, ok := groupNames[group]; ok {
		return n
	}
	return ""
}

var groupNames = map[uint16]string{
	0x0000: "Command",
	0x0002: "Meta Element",
	0x0004: "File Set",
	0x0008: "Identifying Information",
	0x0010: "Patient Information",
	0x0018: "Acquisition Information",
	0x0020: "Relationship Information",
	0x0028: "Image Presentation",
	0x0032: "Study",
	0x0038: "Visit",
	0x003A: "Waveform",
	0x0040: "Procedure",
	0x0050: "Device Information",
	0x0054: "Nuclear Medicine",
	0x0060: "Histogram",
	0x0070: "Presentation State",
	0x0088: "Storage",
	0x0100: "Authorization",
	0x0400: "Digital Signature",
	0x2050: "Presentation LUT",
	0x5200: "Multi-frame Functional Groups",
	0x7FE0: "Pixel Data",
	0xFFFC: "Generic Padding",
	0xFFFE: "Item Information",
}

var byKeyword = func() map[string]Tag {
	m := make(map[string]Tag, len(dict))
	for t, e := range dict {
		m[e.Keyword] = t
	}
	return m
}()

// dict is the standard data dictionary for the tags this engine and its
// callers address. VM values follow PS3.6.
var dict = map[Tag]Entry{
	// Group 0002: File Meta Information
	{0x0002, 0x0000}: {"UL", "1", "FileMetaInformationGroupLength"},
	{0x0002, 0x0001}: {"OB", "1", "FileMetaInformationVersion"},
	{0x0002, 0x0002}: {"UI", "1", "MediaStorageSOPClassUID"},
	{0x0002, 0x0003}: {"UI", "1", "MediaStorageSOPInstanceUID"},
	{0x0002, 0x0010}: {"UI", "1", "TransferSyntaxUID"},
	{0x0002, 0x0012}: {"UI", "1", "ImplementationClassUID"},
	{0x0002, 0x0013}: {"SH", "1", "ImplementationVersionName"},
	{0x0002, 0x0016}: {"AE", "1", "SourceApplicationEntityTitle"},
	{0x0002, 0x0100}: {"UI", "1", "PrivateInformationCreatorUID"},
	{0x0002, 0x0102}: {"OB", "1", "PrivateInformation"},

	// Group 0008: Identifying Information
	{0x0008, 0x0005}: {"CS", "1-n", "SpecificCharacterSet"},
	{0x0008, 0x0008}: {"CS", "2-n", "ImageType"},
	{0x0008, 0x0012}: {"DA", "1", "InstanceCreationDate"},
	{0x0008, 0x0013}: {"TM", "1", "InstanceCreationTime"},
	{0x0008, 0x0014}: {"UI", "1", "InstanceCreatorUID"},
	{0x0008, 0x0016}: {"UI", "1", "SOPClassUID"},
	{0x0008, 0x0018}: {"UI", "1", "SOPInstanceUID"},
	{0x0008, 0x0020}: {"DA", "1", "StudyDate"},
	{0x0008, 0x0021}: {"DA", "1", "SeriesDate"},
	{0x0008, 0x0022}: {"DA", "1", "AcquisitionDate"},
	{0x0008, 0x0023}: {"DA", "1", "ContentDate"},
	{0x0008, 0x0030}: {"TM", "1", "StudyTime"},
	{0x0008, 0x0031}: {"TM", "1", "SeriesTime"},
	{0x0008, 0x0032}: {"TM", "1", "AcquisitionTime"},
	{0x0008, 0x0033}: {"TM", "1", "ContentTime"},
	{0x0008, 0x0050}: {"SH", "1", "AccessionNumber"},
	{0x0008, 0x0060}: {"CS", "1", "Modality"},
	{0x0008, 0x0064}: {"CS", "1", "ConversionType"},
	{0x0008, 0x0068}: {"CS", "1", "PresentationIntentType"},
	{0x0008, 0x0070}: {"LO", "1", "Manufacturer"},
	{0x0008, 0x0080}: {"LO", "1", "InstitutionName"},
	{0x0008, 0x0081}: {"ST", "1", "InstitutionAddress"},
	{0x0008, 0x0090}: {"PN", "1", "ReferringPhysicianName"},
	{0x0008, 0x1010}: {"SH", "1", "StationName"},
	{0x0008, 0x1030}: {"LO", "1", "StudyDescription"},
	{0x0008, 0x103E}: {"LO", "1", "SeriesDescription"},
	{0x0008, 0x1040}: {"LO", "1", "InstitutionalDepartmentName"},
	{0x0008, 0x1048}: {"PN", "1-n", "PhysiciansOfRecord"},
	{0x0008, 0x1050}: {"PN", "1-n", "PerformingPhysicianName"},
	{0x0008, 0x1060}: {"PN", "1-n", "NameOfPhysiciansReadingStudy"},
	{0x0008, 0x1070}: {"PN", "1-n", "OperatorsName"},
	{0x0008, 0x1090}: {"LO", "1", "ManufacturerModelName"},
	{0x0008, 0x1110}: {"SQ", "1", "ReferencedStudySequence"},
	{0x0008, 0x1111}: {"SQ", "1", "ReferencedPerformedProcedureStepSequence"},
	{0x0008, 0x1115}: {"SQ", "1", "ReferencedSeriesSequence"},
	{0x0008, 0x1140}: {"SQ", "1", "ReferencedImageSequence"},
	{0x0008, 0x1150}: {"UI", "1", "ReferencedSOPClassUID"},
	{0x0008, 0x1155}: {"UI", "1", "ReferencedSOPInstanceUID"},
	{0x0008, 0x1160}: {"IS", "1-n", "ReferencedFrameNumber"},
	{0x0008, 0x2111}: {"ST", "1", "DerivationDescription"},
	{0x0008, 0x2112}: {"SQ", "1", "SourceImageSequence"},
	{0x0008, 0x9215}: {"SQ", "1", "DerivationCodeSequence"},

	// Group 0010: Patient Information
	{0x0010, 0x0010}: {"PN", "1", "PatientName"},
	{0x0010, 0x0020}: {"LO", "1", "PatientID"},
	{0x0010, 0x0021}: {"LO", "1", "IssuerOfPatientID"},
	{0x0010, 0x0030}: {"DA", "1", "PatientBirthDate"},
	{0x0010, 0x0032}: {"TM", "1", "PatientBirthTime"},
	{0x0010, 0x0040}: {"CS", "1", "PatientSex"},
	{0x0010, 0x1000}: {"LO", "1-n", "OtherPatientIDs"},
	{0x0010, 0x1001}: {"PN", "1-n", "OtherPatientNames"},
	{0x0010, 0x1010}: {"AS", "1", "PatientAge"},
	{0x0010, 0x1020}: {"DS", "1", "PatientSize"},
	{0x0010, 0x1030}: {"DS", "1", "PatientWeight"},
	{0x0010, 0x2160}: {"SH", "1", "EthnicGroup"},
	{0x0010, 0x21B0}: {"LT", "1", "AdditionalPatientHistory"},
	{0x0010, 0x4000}: {"LT", "1", "PatientComments"},

	// Group 0018: Acquisition Information
	{0x0018, 0x0015}: {"CS", "1", "BodyPartExamined"},
	{0x0018, 0x0020}: {"CS", "1-n", "ScanningSequence"},
	{0x0018, 0x0021}: {"CS", "1-n", "SequenceVariant"},
	{0x0018, 0x0022}: {"CS", "1-n", "ScanOptions"},
	{0x0018, 0x0023}: {"CS", "1", "MRAcquisitionType"},
	{0x0018, 0x0050}: {"DS", "1", "SliceThickness"},
	{0x0018, 0x0060}: {"DS", "1", "KVP"},
	{0x0018, 0x0080}: {"DS", "1", "RepetitionTime"},
	{0x0018, 0x0081}: {"DS", "1", "EchoTime"},
	{0x0018, 0x0083}: {"DS", "1", "NumberOfAverages"},
	{0x0018, 0x0084}: {"DS", "1", "ImagingFrequency"},
	{0x0018, 0x0085}: {"SH", "1", "ImagedNucleus"},
	{0x0018, 0x0086}: {"IS", "1-n", "EchoNumbers"},
	{0x0018, 0x0087}: {"DS", "1", "MagneticFieldStrength"},
	{0x0018, 0x0088}: {"DS", "1", "SpacingBetweenSlices"},
	{0x0018, 0x0091}: {"IS", "1", "EchoTrainLength"},
	{0x0018, 0x0095}: {"DS", "1", "PixelBandwidth"},
	{0x0018, 0x1000}: {"LO", "1", "DeviceSerialNumber"},
	{0x0018, 0x1020}: {"LO", "1-n", "SoftwareVersions"},
	{0x0018, 0x1030}: {"LO", "1", "ProtocolName"},
	{0x0018, 0x1100}: {"DS", "1", "ReconstructionDiameter"},
	{0x0018, 0x1110}: {"DS", "1", "DistanceSourceToDetector"},
	{0x0018, 0x1111}: {"DS", "1", "DistanceSourceToPatient"},
	{0x0018, 0x1120}: {"DS", "1", "GantryDetectorTilt"},
	{0x0018, 0x1130}: {"DS", "1", "TableHeight"},
	{0x0018, 0x1140}: {"CS", "1", "RotationDirection"},
	{0x0018, 0x1150}: {"IS", "1", "ExposureTime"},
	{0x0018, 0x1151}: {"IS", "1", "XRayTubeCurrent"},
	{0x0018, 0x1152}: {"IS", "1", "Exposure"},
	{0x0018, 0x1160}: {"SH", "1", "FilterType"},
	{0x0018, 0x1164}: {"DS", "2", "ImagerPixelSpacing"},
	{0x0018, 0x1170}: {"IS", "1", "GeneratorPower"},
	{0x0018, 0x1190}: {"DS", "1-n", "FocalSpots"},
	{0x0018, 0x1210}: {"SH", "1-n", "ConvolutionKernel"},
	{0x0018, 0x5100}: {"CS", "1", "PatientPosition"},

	// Group 0020: Relationship Information
	{0x0020, 0x000D}: {"UI", "1", "StudyInstanceUID"},
	{0x0020, 0x000E}: {"UI", "1", "SeriesInstanceUID"},
	{0x0020, 0x0010}: {"SH", "1", "StudyID"},
	{0x0020, 0x0011}: {"IS", "1", "SeriesNumber"},
	{0x0020, 0x0012}: {"IS", "1", "AcquisitionNumber"},
	{0x0020, 0x0013}: {"IS", "1", "InstanceNumber"},
	{0x0020, 0x0020}: {"CS", "2", "PatientOrientation"},
	{0x0020, 0x0032}: {"DS", "3", "ImagePositionPatient"},
	{0x0020, 0x0037}: {"DS", "6", "ImageOrientationPatient"},
	{0x0020, 0x0052}: {"UI", "1", "FrameOfReferenceUID"},
	{0x0020, 0x1002}: {"IS", "1", "ImagesInAcquisition"},
	{0x0020, 0x1040}: {"LO", "1", "PositionReferenceIndicator"},
	{0x0020, 0x1041}: {"DS", "1", "SliceLocation"},
	{0x0020, 0x4000}: {"LT", "1", "ImageComments"},
	{0x0020, 0x9113}: {"SQ", "1", "PlanePositionSequence"},
	{0x0020, 0x9116}: {"SQ", "1", "PlaneOrientationSequence"},

	// Group 0028: Image Presentation
	{0x0028, 0x0002}: {"US", "1", "SamplesPerPixel"},
	{0x0028, 0x0004}: {"CS", "1", "PhotometricInterpretation"},
	{0x0028, 0x0006}: {"US", "1", "PlanarConfiguration"},
	{0x0028, 0x0008}: {"IS", "1", "NumberOfFrames"},
	{0x0028, 0x0009}: {"AT", "1-n", "FrameIncrementPointer"},
	{0x0028, 0x0010}: {"US", "1", "Rows"},
	{0x0028, 0x0011}: {"US", "1", "Columns"},
	{0x0028, 0x0030}: {"DS", "2", "PixelSpacing"},
	{0x0028, 0x0034}: {"IS", "2", "PixelAspectRatio"},
	{0x0028, 0x0100}: {"US", "1", "BitsAllocated"},
	{0x0028, 0x0101}: {"US", "1", "BitsStored"},
	{0x0028, 0x0102}: {"US", "1", "HighBit"},
	{0x0028, 0x0103}: {"US", "1", "PixelRepresentation"},
	{0x0028, 0x0106}: {"US", "1", "SmallestImagePixelValue"},
	{0x0028, 0x0107}: {"US", "1", "LargestImagePixelValue"},
	{0x0028, 0x0120}: {"US", "1", "PixelPaddingValue"},
	{0x0028, 0x1050}: {"DS", "1-n", "WindowCenter"},
	{0x0028, 0x1051}: {"DS", "1-n", "WindowWidth"},
	{0x0028, 0x1052}: {"DS", "1", "RescaleIntercept"},
	{0x0028, 0x1053}: {"DS", "1", "RescaleSlope"},
	{0x0028, 0x1054}: {"LO", "1", "RescaleType"},
	{0x0028, 0x1055}: {"LO", "1-n", "WindowCenterWidthExplanation"},
	{0x0028, 0x1101}: {"US", "3", "RedPaletteColorLookupTableDescriptor"},
	{0x0028, 0x1102}: {"US", "3", "GreenPaletteColorLookupTableDescriptor"},
	{0x0028, 0x1103}: {"US", "3", "BluePaletteColorLookupTableDescriptor"},
	{0x0028, 0x1201}: {"OW", "1", "RedPaletteColorLookupTableData"},
	{0x0028, 0x1202}: {"OW", "1", "GreenPaletteColorLookupTableData"},
	{0x0028, 0x1203}: {"OW", "1", "BluePaletteColorLookupTableData"},
	{0x0028, 0x2110}: {"CS", "1", "LossyImageCompression"},
	{0x0028, 0x2112}: {"DS", "1-n", "LossyImageCompressionRatio"},

	// Group 0032: Study
	{0x0032, 0x1032}: {"PN", "1", "RequestingPhysician"},
	{0x0032, 0x1060}: {"LO", "1", "RequestedProcedureDescription"},
	{0x0032, 0x4000}: {"LT", "1", "StudyComments"},

	// Group 0038: Visit
	{0x0038, 0x0010}: {"LO", "1", "AdmissionID"},
	{0x0038, 0x0050}: {"LO", "1", "SpecialNeeds"},
	{0x0038, 0x0300}: {"LO", "1", "CurrentPatientLocation"},
	{0x0038, 0x4000}: {"LT", "1", "VisitComments"},

	// Group 0040: Procedure
	{0x0040, 0x0244}: {"DA", "1", "PerformedProcedureStepStartDate"},
	{0x0040, 0x0245}: {"TM", "1", "PerformedProcedureStepStartTime"},
	{0x0040, 0x0253}: {"SH", "1", "PerformedProcedureStepID"},
	{0x0040, 0x0254}: {"LO", "1", "PerformedProcedureStepDescription"},
	{0x0040, 0x0275}: {"SQ", "1", "RequestAttributesSequence"},
	{0x0040, 0xA030}: {"DT", "1", "VerificationDateTime"},
	{0x0040, 0xA730}: {"SQ", "1", "ContentSequence"},

	// Group 0054: Nuclear Medicine
	{0x0054, 0x0011}: {"US", "1", "NumberOfEnergyWindows"},
	{0x0054, 0x0081}: {"US", "1", "NumberOfSlices"},
	{0x0054, 0x1000}: {"CS", "2", "SeriesType"},
	{0x0054, 0x1001}: {"CS", "1", "Units"},
	{0x0054, 0x1102}: {"CS", "1", "DecayCorrection"},

	// Group 0088: Storage
	{0x0088, 0x0130}: {"SH", "1", "StorageMediaFileSetID"},
	{0x0088, 0x0140}: {"UI", "1", "StorageMediaFileSetUID"},

	// Group 2050: Presentation LUT
	{0x2050, 0x0020}: {"CS", "1", "PresentationLUTShape"},

	// Group 5200: Multi-frame Functional Groups
	{0x5200, 0x9229}: {"SQ", "1", "SharedFunctionalGroupsSequence"},
	{0x5200, 0x9230}: {"SQ", "1", "PerFrameFunctionalGroupsSequence"},

	// Group 7FE0: Pixel Data
	{0x7FE0, 0x0008}: {"OF", "1", "FloatPixelData"},
	{0x7FE0, 0x0009}: {"OD", "1", "DoubleFloatPixelData"},
	{0x7FE0, 0x0010}: {"OW", "1", "PixelData"},

	// Group FFFE: Item Information
	{0xFFFE, 0xE000}: {"NA", "1", "Item"},
	{0xFFFE, 0xE00D}: {"NA", "1", "ItemDelimitationItem"},
	{0xFFFE, 0xE0DD}: {"NA", "1", "SequenceDelimitationItem"},
}
